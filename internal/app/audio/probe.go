package audio

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-audio/wav"

	apperrors "recording-whisper/internal/app/errors"
	"recording-whisper/internal/app/model"
)

// ProbeAudio returns the total duration of the audio file. WAV containers
// are decoded locally; everything else goes through ffprobe. The probe also
// verifies the file actually carries an audio stream.
func (s *Segmenter) ProbeAudio(ctx context.Context, filePath string) (time.Duration, error) {
	if strings.EqualFold(filepath.Ext(filePath), ".wav") {
		if d, err := wavDuration(filePath); err == nil {
			return d, nil
		}
		// Undecodable WAV headers fall through to ffprobe.
	}
	return s.ffprobeDuration(ctx, filePath)
}

func wavDuration(filePath string) (time.Duration, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d, err := wav.NewDecoder(f).Duration()
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, apperrors.Newf("wav header reports non-positive duration for %s", filePath)
	}
	return d, nil
}

func (s *Segmenter) ffprobeDuration(ctx context.Context, filePath string) (time.Duration, error) {
	output, err := s.cmd.Output(ctx, "ffprobe",
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		filePath)
	if err != nil {
		return 0, apperrors.Wrapf(apperrors.ErrSourceNotFound, "ffprobe failed for %s: %v", filePath, err)
	}

	var probe model.FFProbeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return 0, apperrors.Wrapf(apperrors.ErrSourceNotFound, "cannot parse ffprobe output for %s: %v", filePath, err)
	}

	hasAudio := false
	for _, stream := range probe.Streams {
		if stream.CodecType == "audio" {
			hasAudio = true
			break
		}
	}
	if !hasAudio {
		return 0, apperrors.Wrapf(apperrors.ErrSourceNotFound, "no audio stream in %s", filePath)
	}

	durationFloat, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil {
		return 0, apperrors.Wrapf(apperrors.ErrSourceNotFound, "cannot determine duration of %s: %v", filePath, err)
	}

	return time.Duration(durationFloat * float64(time.Second)), nil
}
