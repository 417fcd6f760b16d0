package config

import (
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "recording-whisper/internal/app/errors"
)

const (
	DefaultProvider        = "openai"
	DefaultModel           = "gpt-4o-transcribe"
	DefaultLanguage        = "ja"
	DefaultMaxChunkSeconds = 1250
	DefaultOutputDir       = "transcripts"
)

// Config is the fully resolved runtime configuration. It is assembled once at
// startup (defaults, then settings file, then environment, then flags) and
// handed to constructors; nothing below the cmd layer reads the process
// environment.
type Config struct {
	Provider        string `yaml:"provider" validate:"oneof=openai elevenlabs"`
	Model           string `yaml:"model" validate:"required"`
	Language        string `yaml:"language" validate:"required"`
	MaxChunkSeconds int    `yaml:"max_chunk_seconds" validate:"gt=0"`
	OutputDir       string `yaml:"output_dir" validate:"required"`

	// Credentials come from the environment only, never from the settings file.
	OpenAIKey     string `yaml:"-"`
	ElevenLabsKey string `yaml:"-"`

	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Archive  ArchiveConfig  `yaml:"archive"`

	Verbose bool `yaml:"-"`
}

// DatabaseConfig selects the run journal backend. An empty PostgresDSN means
// local sqlite.
type DatabaseConfig struct {
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// RedisConfig enables the chunk transcript cache when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// ArchiveConfig enables transcript upload to object storage when Endpoint is set.
type ArchiveConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

func (a ArchiveConfig) Enabled() bool {
	return a.Endpoint != ""
}

var validate = validator.New()

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		Provider:        DefaultProvider,
		Model:           DefaultModel,
		Language:        DefaultLanguage,
		MaxChunkSeconds: DefaultMaxChunkSeconds,
		OutputDir:       DefaultOutputDir,
	}
}

// Load assembles a Config from defaults, the optional settings file and the
// environment. Flag values are applied by the caller afterwards, then
// Validate must be called before anything touches the file system.
func Load(settingsPath string) (*Config, error) {
	if err := LoadEnv(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := applySettingsFile(cfg, settingsPath); err != nil {
		return nil, err
	}
	applyEnvironment(cfg)

	return cfg, nil
}

// Validate checks the resolved configuration, including that the credential
// for the chosen provider is present. It must pass before any file I/O.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidConfig, "%v", err)
	}

	switch c.Provider {
	case "openai":
		if c.OpenAIKey == "" {
			return apperrors.Wrap(apperrors.ErrMissingAPIKey, "OPENAI_API_KEY is not set")
		}
		if !strings.HasPrefix(c.OpenAIKey, "sk-") || len(c.OpenAIKey) < 20 {
			return apperrors.Wrap(apperrors.ErrInvalidConfig, "OPENAI_API_KEY format invalid: must start with 'sk-'")
		}
	case "elevenlabs":
		if c.ElevenLabsKey == "" {
			return apperrors.Wrap(apperrors.ErrMissingAPIKey, "ELEVENLABS_API_KEY is not set")
		}
	}

	return nil
}

// APIKey returns the credential for the configured provider.
func (c *Config) APIKey() string {
	if c.Provider == "elevenlabs" {
		return c.ElevenLabsKey
	}
	return c.OpenAIKey
}
