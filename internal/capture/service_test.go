package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vovarama1992/voice_translator/internal/session"
)

var (
	wavBytes = append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 32)...)
	mp3Bytes = append([]byte("ID3\x04\x00"), make([]byte, 32)...)
)

type fakeArchiver struct {
	calls int
	err   error
}

func (f *fakeArchiver) SaveInput(_ context.Context, _ string, _ []byte, _ string) (string, error) {
	f.calls++
	return "https://s3.example/input", f.err
}

func newTestService(t *testing.T, a Archiver) (*Service, string) {
	dir := t.TempDir()
	return NewService(dir, a, zap.NewNop()), dir
}

func TestCapture_Recording(t *testing.T) {
	svc, dir := newTestService(t, nil)
	st := session.New("s1")

	require.NoError(t, svc.Capture(context.Background(), st, SourceRecording, wavBytes, "", "audio/wav"))

	assert.Equal(t, dir, filepath.Dir(st.AudioFilePath))
	assert.Equal(t, SuffixWAV, st.AudioSuffix)
	assert.Equal(t, SuffixWAV, filepath.Ext(st.AudioFilePath))

	data, err := svc.Read(st)
	require.NoError(t, err)
	assert.Equal(t, wavBytes, data)
}

func TestCapture_RecordingWebMByContentType(t *testing.T) {
	svc, _ := newTestService(t, nil)
	st := session.New("s1")

	require.NoError(t, svc.Capture(context.Background(), st, SourceRecording, []byte("opaque"), "", "audio/webm;codecs=opus"))
	assert.Equal(t, SuffixWebM, st.AudioSuffix)
}

func TestCapture_ReplacesPreviousFile(t *testing.T) {
	svc, _ := newTestService(t, nil)
	st := session.New("s1")
	ctx := context.Background()

	require.NoError(t, svc.Capture(ctx, st, SourceRecording, wavBytes, "", ""))
	first := st.AudioFilePath

	require.NoError(t, svc.Capture(ctx, st, SourceUpload, mp3Bytes, "speech.mp3", "audio/mpeg"))
	assert.NotEqual(t, first, st.AudioFilePath)
	assert.Equal(t, SuffixMP3, st.AudioSuffix)

	_, err := os.Stat(first)
	assert.True(t, errors.Is(err, os.ErrNotExist), "previous temp file must be removed")

	_, err = os.Stat(st.AudioFilePath)
	assert.NoError(t, err)
}

func TestCapture_UploadValidation(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		wantErr  error
	}{
		{"wav ok", "a.wav", wavBytes, nil},
		{"mp3 ok", "a.MP3", mp3Bytes, nil},
		{"mp3 frame sync", "a.mp3", []byte{0xFF, 0xFB, 0x90, 0x00}, nil},
		{"ogg rejected", "a.ogg", []byte("OggS\x00\x02"), ErrUnsupportedFormat},
		{"extension mismatch", "a.wav", mp3Bytes, ErrUnsupportedFormat},
		{"garbage", "a.mp3", []byte("hello world"), ErrUnsupportedFormat},
		{"empty", "a.wav", nil, ErrEmptyAudio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, nil)
			st := session.New("s1")

			err := svc.Capture(context.Background(), st, SourceUpload, tt.data, tt.filename, "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, st.HasAudio())
				return
			}
			require.NoError(t, err)
			assert.True(t, st.HasAudio())
		})
	}
}

func TestCapture_ArchiveFailureIsNotFatal(t *testing.T) {
	a := &fakeArchiver{err: errors.New("s3 down")}
	svc, _ := newTestService(t, a)
	st := session.New("s1")

	require.NoError(t, svc.Capture(context.Background(), st, SourceRecording, wavBytes, "", ""))
	assert.Equal(t, 1, a.calls)
	assert.True(t, st.HasAudio())
}

func TestRelease(t *testing.T) {
	svc, _ := newTestService(t, nil)
	st := session.New("s1")

	require.NoError(t, svc.Capture(context.Background(), st, SourceRecording, wavBytes, "", ""))
	path := st.AudioFilePath

	svc.Release(st)
	assert.False(t, st.HasAudio())
	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// повторный вызов безопасен
	svc.Release(st)
}

func TestPurgeStale(t *testing.T) {
	svc, dir := newTestService(t, nil)

	old := filepath.Join(dir, "capture-old.wav")
	fresh := filepath.Join(dir, "capture-fresh.wav")
	other := filepath.Join(dir, "unrelated.wav")
	for _, p := range []string{old, fresh, other} {
		require.NoError(t, os.WriteFile(p, wavBytes, 0o600))
	}
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))
	require.NoError(t, os.Chtimes(other, past, past))

	removed, err := svc.PurgeStale(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(old)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
	_, err = os.Stat(other)
	assert.NoError(t, err)
}

func TestCapture_ClearsPreviousError(t *testing.T) {
	svc, _ := newTestService(t, nil)
	st := session.New("s1")
	st.LastError = "Error: model overloaded"

	require.NoError(t, svc.Capture(context.Background(), st, SourceRecording, wavBytes, "", "audio/wav"))
	assert.Empty(t, st.LastError)
}

func TestCapture_RejectedKeepsPreviousError(t *testing.T) {
	svc, _ := newTestService(t, nil)
	st := session.New("s1")
	st.LastError = "Error: model overloaded"

	err := svc.Capture(context.Background(), st, SourceUpload, []byte("OggS"), "a.ogg", "")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, "Error: model overloaded", st.LastError)
}

func TestTouch_KeepsFileFromPurge(t *testing.T) {
	svc, _ := newTestService(t, nil)
	st := session.New("s1")
	require.NoError(t, svc.Capture(context.Background(), st, SourceUpload, wavBytes, "speech.wav", ""))

	// захват давний, но сессия им пользуется
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(st.AudioFilePath, past, past))
	svc.Touch(st)

	removed, err := svc.PurgeStale(24 * time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)

	data, err := svc.Read(st)
	require.NoError(t, err)
	assert.Equal(t, wavBytes, data)
}

func TestTouch_NoAudio(t *testing.T) {
	svc, _ := newTestService(t, nil)
	assert.NotPanics(t, func() { svc.Touch(session.New("s1")) })
}
