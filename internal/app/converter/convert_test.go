package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recording-whisper/internal/app/audio"
	apperrors "recording-whisper/internal/app/errors"
	"recording-whisper/internal/app/model"
	"recording-whisper/internal/app/testutil"
	"recording-whisper/internal/app/transcript"
)

type journalStub struct {
	records []model.RunRecord
	closed  bool
}

func (j *journalStub) Close() error { j.closed = true; return nil }
func (j *journalStub) Record(_ context.Context, rec model.RunRecord) error {
	j.records = append(j.records, rec)
	return nil
}
func (j *journalStub) Recent(context.Context, int) ([]model.RunRecord, error) { return j.records, nil }

type mapCache struct {
	entries map[string]string
	hits    int
	stores  int
}

func newMapCache() *mapCache { return &mapCache{entries: make(map[string]string)} }

func (m *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	text, ok := m.entries[key]
	if ok {
		m.hits++
	}
	return text, ok, nil
}

func (m *mapCache) Set(_ context.Context, key, text string) error {
	m.entries[key] = text
	m.stores++
	return nil
}

type archiveStub struct {
	archived []string
}

func (a *archiveStub) ArchiveTranscript(_ context.Context, localPath, _ string) (string, error) {
	a.archived = append(a.archived, localPath)
	return "http://archive.local/" + filepath.Base(localPath), nil
}

type fixture struct {
	converter *Converter
	mock      *testutil.MockTranscriber
	journal   *journalStub
	cache     *mapCache
	archive   *archiveStub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	f := &fixture{
		mock:    testutil.NewMockTranscriber(),
		journal: &journalStub{},
		cache:   newMapCache(),
		archive: &archiveStub{},
	}
	f.converter = NewConverter(
		audio.NewSegmenter(logger),
		f.mock, f.journal, f.cache, f.archive, logger,
		Options{
			Model:     "gpt-4o-transcribe",
			Language:  "ja",
			OutputDir: t.TempDir(),
			MaxChunk:  1250 * time.Second,
		})
	return f
}

// makeChunks lays out n fake chunk files in a real temp chunk directory, the
// way the segmenter would.
func makeChunks(t *testing.T, n int) []model.Chunk {
	t.Helper()
	dir, err := os.MkdirTemp("", "a2t-chunks-*")
	require.NoError(t, err)

	chunks := make([]model.Chunk, 0, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("chunk_%03d.mp3", i))
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("audio bytes %d", i)), 0644))
		chunks = append(chunks, model.Chunk{
			Path:    path,
			Ordinal: i,
			Start:   time.Duration(i) * 1250 * time.Second,
			End:     time.Duration(i+1) * 1250 * time.Second,
		})
	}
	return chunks
}

func ordinalResponses(m *testutil.MockTranscriber) {
	m.WithResponseFunc(func(call int, _ string) (string, error) {
		return fmt.Sprint(call - 1), nil
	})
}

func TestRunPreservesSegmentOrder(t *testing.T) {
	f := newFixture(t)
	ordinalResponses(f.mock)

	chunks := makeChunks(t, 4)
	outputPath := filepath.Join(t.TempDir(), "out.txt")

	result, err := f.converter.Run(context.Background(), "/audio/meeting.mp3", chunks, outputPath)
	require.NoError(t, err)
	assert.Equal(t, 4, result.ChunksTranscribed)
	assert.True(t, result.Split)

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	// bodies read 0,1,2,3 in sequence
	assert.Equal(t, []string{"0", "1", "2", "3"}, segmentsOf(t, string(content)))
}

func TestRunWritesHeaderOnce(t *testing.T) {
	for _, n := range []int{1, 3} {
		t.Run(fmt.Sprintf("%d_chunks", n), func(t *testing.T) {
			f := newFixture(t)
			chunks := makeChunks(t, n)
			outputPath := filepath.Join(t.TempDir(), "out.txt")

			_, err := f.converter.Run(context.Background(), "/audio/meeting.mp3", chunks, outputPath)
			require.NoError(t, err)

			content, err := os.ReadFile(outputPath)
			require.NoError(t, err)
			assert.Equal(t, 1, strings.Count(string(content), "# Transcription Result"))
			assert.Contains(t, string(content), "# Source File: meeting.mp3")
		})
	}
}

func TestRunStopsAtFailedChunkAndKeepsPartialProgress(t *testing.T) {
	f := newFixture(t)
	ordinalResponses(f.mock)
	f.mock.FailAt(3, apperrors.Wrap(apperrors.ErrServiceFailed, "quota exceeded"))

	chunks := makeChunks(t, 5)
	outputPath := filepath.Join(t.TempDir(), "out.txt")

	result, err := f.converter.Run(context.Background(), "/audio/meeting.mp3", chunks, outputPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrServiceFailed)

	// exactly k=2 completed bodies survive, no more calls after the failure
	assert.Equal(t, 2, result.ChunksTranscribed)
	assert.Equal(t, 3, f.mock.GetCallCount())

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, segmentsOf(t, string(content)))

	// the failed run is journaled
	require.Len(t, f.journal.records, 1)
	assert.True(t, f.journal.records[0].HasError)
	assert.Contains(t, f.journal.records[0].ErrorMessage, "quota exceeded")

	// nothing was archived
	assert.Empty(t, f.archive.archived)
}

func TestRunCleansUpChunksOnBothPaths(t *testing.T) {
	testCases := []struct {
		name   string
		failAt int
	}{
		{name: "success", failAt: 0},
		{name: "service_failure", failAt: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			if tc.failAt > 0 {
				f.mock.FailAt(tc.failAt, apperrors.ErrServiceFailed)
			}

			chunks := makeChunks(t, 3)
			chunkDir := filepath.Dir(chunks[0].Path)
			outputPath := filepath.Join(t.TempDir(), "out.txt")

			_, _ = f.converter.Run(context.Background(), "/audio/meeting.mp3", chunks, outputPath)

			for _, chunk := range chunks {
				_, err := os.Stat(chunk.Path)
				assert.True(t, os.IsNotExist(err), "chunk %s should be deleted", chunk.Path)
			}
			_, err := os.Stat(chunkDir)
			assert.True(t, os.IsNotExist(err), "chunk directory should be removed")
		})
	}
}

func TestRunNeverDeletesOriginalSource(t *testing.T) {
	f := newFixture(t)

	source := filepath.Join(t.TempDir(), "meeting.mp3")
	require.NoError(t, os.WriteFile(source, []byte("original audio"), 0644))

	chunks := []model.Chunk{{Path: source, Ordinal: 0, Original: true, End: 90 * time.Second}}
	outputPath := filepath.Join(t.TempDir(), "out.txt")

	result, err := f.converter.Run(context.Background(), source, chunks, outputPath)
	require.NoError(t, err)
	assert.False(t, result.Split)

	content, err := os.ReadFile(source)
	require.NoError(t, err)
	assert.Equal(t, "original audio", string(content))
}

func TestRunMissingChunkFileFails(t *testing.T) {
	f := newFixture(t)

	chunks := makeChunks(t, 2)
	require.NoError(t, os.Remove(chunks[1].Path))
	outputPath := filepath.Join(t.TempDir(), "out.txt")

	result, err := f.converter.Run(context.Background(), "/audio/meeting.mp3", chunks, outputPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSourceNotFound)
	assert.Equal(t, 1, result.ChunksTranscribed)
}

func TestRunUsesCache(t *testing.T) {
	f := newFixture(t)
	ordinalResponses(f.mock)

	chunks := makeChunks(t, 3)
	outputPath := filepath.Join(t.TempDir(), "first.txt")
	_, err := f.converter.Run(context.Background(), "/audio/meeting.mp3", chunks, outputPath)
	require.NoError(t, err)
	assert.Equal(t, 3, f.mock.GetCallCount())
	assert.Equal(t, 3, f.cache.stores)

	// identical chunk bytes on a second run are served from the cache
	chunks2 := makeChunks(t, 3)
	outputPath2 := filepath.Join(t.TempDir(), "second.txt")
	_, err = f.converter.Run(context.Background(), "/audio/meeting.mp3", chunks2, outputPath2)
	require.NoError(t, err)
	assert.Equal(t, 3, f.mock.GetCallCount(), "remote service must not be called again")
	assert.Equal(t, 3, f.cache.hits)

	first, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	second, err := os.ReadFile(outputPath2)
	require.NoError(t, err)
	// headers differ by timestamp; bodies must match
	assert.Equal(t, bodyOf(t, string(first)), bodyOf(t, string(second)))
}

// bodyOf strips the header block, returning everything after the model banner.
func bodyOf(t *testing.T, text string) string {
	t.Helper()
	idx := strings.Index(text, "=====\n\n")
	require.GreaterOrEqual(t, idx, 0)
	return text[idx+len("=====\n\n"):]
}

// segmentsOf returns the segment bodies of a transcript document in file order.
func segmentsOf(t *testing.T, text string) []string {
	t.Helper()
	body := strings.TrimSpace(bodyOf(t, text))
	return strings.Split(body, "\n\n"+transcript.SegmentSeparator+"\n\n")
}

// writeTestWav lays down a silent PCM wav (16 kHz, mono, 16-bit) of the given
// length so duration probing works without ffprobe.
func writeTestWav(t *testing.T, path string, d time.Duration) {
	t.Helper()

	const sampleRate = 16000
	const byteRate = sampleRate * 2
	dataSize := int(d.Seconds() * byteRate)

	var buf []byte
	buf = append(buf, "RIFF"...)
	buf = appendUint32(buf, uint32(36+dataSize))
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = appendUint32(buf, 16)
	buf = appendUint16(buf, 1) // PCM
	buf = appendUint16(buf, 1) // mono
	buf = appendUint32(buf, sampleRate)
	buf = appendUint32(buf, byteRate)
	buf = appendUint16(buf, 2)  // block align
	buf = appendUint16(buf, 16) // bits per sample
	buf = append(buf, "data"...)
	buf = appendUint32(buf, uint32(dataSize))
	buf = append(buf, make([]byte, dataSize)...)

	require.NoError(t, os.WriteFile(path, buf, 0644))
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func appendUint16(b []byte, v uint16) []byte {
	return append(b, byte(v), byte(v>>8))
}

func TestRunJournalsAndArchivesSuccess(t *testing.T) {
	f := newFixture(t)

	chunks := makeChunks(t, 2)
	outputPath := filepath.Join(t.TempDir(), "out.txt")

	_, err := f.converter.Run(context.Background(), "/audio/meeting.mp3", chunks, outputPath)
	require.NoError(t, err)

	require.Len(t, f.journal.records, 1)
	rec := f.journal.records[0]
	assert.Equal(t, "meeting.mp3", rec.SourceFile)
	assert.Equal(t, outputPath, rec.OutputPath)
	assert.Equal(t, 2, rec.ChunkCount)
	assert.Equal(t, "gpt-4o-transcribe", rec.Model)
	assert.Equal(t, "ja", rec.Language)
	assert.False(t, rec.HasError)
	assert.NotEmpty(t, rec.ID)
	assert.InDelta(t, 2500, rec.AudioDuration, 0.001)

	assert.Equal(t, []string{outputPath}, f.archive.archived)
}

func TestRunRefusesExistingOutputFile(t *testing.T) {
	f := newFixture(t)

	outputPath := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(outputPath, []byte("earlier run"), 0644))

	chunks := makeChunks(t, 1)
	_, err := f.converter.Run(context.Background(), "/audio/meeting.mp3", chunks, outputPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrIOFailure)

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "earlier run", string(content))
}

func TestConvertSingleChunkSource(t *testing.T) {
	f := newFixture(t)
	f.mock.WithDefaultResponse("hello from a short recording")

	source := filepath.Join(t.TempDir(), "short.wav")
	writeTestWav(t, source, 2*time.Second)

	outputPath := filepath.Join(t.TempDir(), "out.txt")
	result, err := f.converter.Convert(context.Background(), source, outputPath)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ChunkCount)
	assert.False(t, result.Split)

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello from a short recording")
	assert.NotContains(t, string(content), transcript.SegmentSeparator)

	// the original file is untouched
	_, err = os.Stat(source)
	assert.NoError(t, err)
}

func TestConvertGeneratesOutputPath(t *testing.T) {
	f := newFixture(t)

	source := filepath.Join(t.TempDir(), "short.wav")
	writeTestWav(t, source, time.Second)

	result, err := f.converter.Convert(context.Background(), source, "")
	require.NoError(t, err)

	assert.Contains(t, filepath.Base(result.OutputPath), "transcript_")
	_, err = os.Stat(result.OutputPath)
	assert.NoError(t, err)
}

func TestConvertMissingSource(t *testing.T) {
	f := newFixture(t)

	_, err := f.converter.Convert(context.Background(), "/no/such/file.mp3", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSourceNotFound)
	assert.Zero(t, f.mock.GetCallCount())
}

func TestCloseClosesJournal(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.converter.Close())
	assert.True(t, f.journal.closed)
}
