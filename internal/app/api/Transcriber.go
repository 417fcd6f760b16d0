package api

import "context"

// Transcriber converts one piece of audio into text. Model and target
// language are fixed when the implementation is constructed; fileName is only
// a container format hint for the remote service.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, fileName string) (string, error)
}
