package whisper

import (
	"bytes"
	"context"

	"github.com/sashabaranov/go-openai"

	apperrors "recording-whisper/internal/app/errors"
)

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client   *openai.Client
	model    string
	language string
}

// NewRemoteTranscriber creates a RemoteTranscriber bound to a fixed model and
// target language.
func NewRemoteTranscriber(client *openai.Client, model, language string) *RemoteTranscriber {
	return &RemoteTranscriber{
		client:   client,
		model:    model,
		language: language,
	}
}

// Transcribe sends the audio bytes to the transcription endpoint. fileName
// tells the API which container format the bytes are in.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, audio []byte, fileName string) (string, error) {
	req := openai.AudioRequest{
		Model:    rt.model,
		FilePath: fileName,
		Reader:   bytes.NewReader(audio),
		Language: rt.language,
	}
	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrServiceFailed, "createTranscription failed: %v", err)
	}

	return resp.Text, nil
}
