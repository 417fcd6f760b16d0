package audio

import (
	"context"
	"os"
	"os/exec"
)

// commandRunner abstracts ffmpeg/ffprobe execution so window math can be
// tested without the binaries installed.
type commandRunner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

type osCommandRunner struct{}

func (osCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func (osCommandRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// tempDirCreator abstracts temp directory creation for tests.
type tempDirCreator interface {
	MkdirTemp(dir, pattern string) (string, error)
}

type osTempDirCreator struct{}

func (osTempDirCreator) MkdirTemp(dir, pattern string) (string, error) {
	return os.MkdirTemp(dir, pattern)
}
