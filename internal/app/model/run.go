package model

import "time"

// RunResult is the terminal outcome of one transcription invocation.
type RunResult struct {
	OutputPath        string
	ChunkCount        int
	ChunksTranscribed int
	Split             bool
}

type RunRecord struct {
	ID            string
	SourceFile    string
	SourcePath    string
	OutputPath    string
	AudioDuration float64
	ChunkCount    int
	Model         string
	Language      string
	CompletedAt   time.Time
	HasError      bool
	ErrorMessage  string
}
