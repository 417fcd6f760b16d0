package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from a .env file if one exists.
// A missing file is not an error; variables may be set system-wide.
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
		"../../.env",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}

	return nil
}

// applyEnvironment overlays environment variables onto cfg. Unset variables
// leave the current value untouched.
func applyEnvironment(c *Config) {
	c.OpenAIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	c.ElevenLabsKey = strings.TrimSpace(os.Getenv("ELEVENLABS_API_KEY"))

	if v := os.Getenv("A2T_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("A2T_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("A2T_LANGUAGE"); v != "" {
		c.Language = v
	}
	if v := os.Getenv("A2T_MAX_CHUNK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxChunkSeconds = n
		}
	}
	if v := os.Getenv("A2T_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("A2T_SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Database.PostgresDSN = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = n
		}
	}

	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		c.Archive.Endpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		c.Archive.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		c.Archive.SecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		c.Archive.Bucket = v
	}
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		c.Archive.UseSSL = v == "true"
	}
}
