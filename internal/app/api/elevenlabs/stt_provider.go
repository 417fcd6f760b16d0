package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	apperrors "recording-whisper/internal/app/errors"
)

const defaultBaseURL = "https://api.elevenlabs.io/v1"

// Config represents configuration for the ElevenLabs STT provider
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	Timeout  time.Duration
}

// STTProvider implements transcription against the ElevenLabs Speech-to-Text
// API. Model and target language are fixed at construction.
type STTProvider struct {
	config Config
	client *http.Client
}

type sttResponse struct {
	Text     string `json:"text"`
	Language string `json:"language_code,omitempty"`
}

// NewSTTProvider creates a new ElevenLabs STT provider
func NewSTTProvider(config Config) *STTProvider {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = "scribe_v1"
	}
	if config.Timeout == 0 {
		config.Timeout = 120 * time.Second
	}

	return &STTProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Transcribe uploads the audio bytes and returns the recognized text.
func (p *STTProvider) Transcribe(ctx context.Context, audio []byte, fileName string) (string, error) {
	req, err := p.newRequest(ctx, audio, fileName)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrServiceFailed, "failed to call ElevenLabs API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", apperrors.Wrapf(apperrors.ErrServiceFailed,
			"ElevenLabs API returned status %d: %s", resp.StatusCode, body)
	}

	var parsed sttResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperrors.Wrapf(apperrors.ErrServiceFailed, "failed to parse API response: %v", err)
	}

	return parsed.Text, nil
}

func (p *STTProvider) newRequest(ctx context.Context, audio []byte, fileName string) (*http.Request, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrServiceFailed, "failed to create form: %v", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrServiceFailed, "failed to copy audio data: %v", err)
	}

	if err := writer.WriteField("model_id", p.config.Model); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrServiceFailed, "failed to add model field: %v", err)
	}
	if p.config.Language != "" {
		if err := writer.WriteField("language_code", p.config.Language); err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrServiceFailed, "failed to add language field: %v", err)
		}
	}
	writer.Close()

	url := fmt.Sprintf("%s/speech-to-text", p.config.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrServiceFailed, "failed to create HTTP request: %v", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("xi-api-key", p.config.APIKey)

	return req, nil
}
