package testutil

import (
	"context"
	"fmt"
	"sync"

	"recording-whisper/internal/app/api"
)

// MockTranscriber is a configurable in-memory implementation of the
// api.Transcriber interface for testing orchestration scenarios without a
// network.
type MockTranscriber struct {
	mu sync.Mutex

	// Configuration options
	DefaultResponse string
	DefaultError    error
	ResponseMap     map[string]string
	ErrorMap        map[string]error
	// ResponseFunc, when set, wins over the maps. call is 1-based.
	ResponseFunc func(call int, fileName string) (string, error)
	// FailAtCall fails the n-th call (1-based) with FailWith. Zero disables.
	FailAtCall int
	FailWith   error

	calls []TranscriptionCall
}

// TranscriptionCall records a single transcription call.
type TranscriptionCall struct {
	FileName  string
	AudioSize int
}

// NewMockTranscriber creates a new MockTranscriber with sensible defaults
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{
		DefaultResponse: "This is a mock transcription result.",
		ResponseMap:     make(map[string]string),
		ErrorMap:        make(map[string]error),
	}
}

// Transcribe implements the api.Transcriber interface
func (m *MockTranscriber) Transcribe(_ context.Context, audio []byte, fileName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.calls) + 1
	m.calls = append(m.calls, TranscriptionCall{FileName: fileName, AudioSize: len(audio)})

	if m.FailAtCall > 0 && call == m.FailAtCall {
		if m.FailWith != nil {
			return "", m.FailWith
		}
		return "", fmt.Errorf("mock transcriber failure at call %d", call)
	}
	if err, exists := m.ErrorMap[fileName]; exists {
		return "", err
	}
	if m.DefaultError != nil {
		return "", m.DefaultError
	}
	if m.ResponseFunc != nil {
		return m.ResponseFunc(call, fileName)
	}
	if response, exists := m.ResponseMap[fileName]; exists {
		return response, nil
	}
	return m.DefaultResponse, nil
}

// Configuration methods

// WithDefaultResponse sets the default response text
func (m *MockTranscriber) WithDefaultResponse(response string) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DefaultResponse = response
	return m
}

// WithDefaultError sets the default error to return
func (m *MockTranscriber) WithDefaultError(err error) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DefaultError = err
	return m
}

// WithResponseFunc derives responses from the call index and file name
func (m *MockTranscriber) WithResponseFunc(fn func(call int, fileName string) (string, error)) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResponseFunc = fn
	return m
}

// SetResponseForFile sets a specific response for a given file name
func (m *MockTranscriber) SetResponseForFile(fileName string, response string) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResponseMap[fileName] = response
	return m
}

// SetErrorForFile sets a specific error for a given file name
func (m *MockTranscriber) SetErrorForFile(fileName string, err error) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorMap[fileName] = err
	return m
}

// FailAt fails the n-th call (1-based) with err
func (m *MockTranscriber) FailAt(call int, err error) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailAtCall = call
	m.FailWith = err
	return m
}

// State inspection methods

// GetCallCount returns the total number of calls made
func (m *MockTranscriber) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// GetCallHistory returns the complete call history
func (m *MockTranscriber) GetCallHistory() []TranscriptionCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := make([]TranscriptionCall, len(m.calls))
	copy(history, m.calls)
	return history
}

// WasCalledWith checks if the transcriber was called with a specific file name
func (m *MockTranscriber) WasCalledWith(fileName string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, call := range m.calls {
		if call.FileName == fileName {
			return true
		}
	}
	return false
}

// Reset clears all state and returns to default configuration
func (m *MockTranscriber) Reset() *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.ResponseMap = make(map[string]string)
	m.ErrorMap = make(map[string]error)
	m.ResponseFunc = nil
	m.DefaultError = nil
	m.DefaultResponse = "This is a mock transcription result."
	m.FailAtCall = 0
	m.FailWith = nil
	return m
}

// Interface compliance check
var _ api.Transcriber = (*MockTranscriber)(nil)
