package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElevenLabsClient_Synthesize(t *testing.T) {
	audio := []byte("ID3-mp3-bytes")
	var gotPath, gotKey string
	var body map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(audio)
	}))
	defer srv.Close()

	c := NewElevenLabsClient("el-key", "", srv.URL)
	got, err := c.Synthesize(context.Background(), "नमस्ते")
	require.NoError(t, err)

	assert.Equal(t, audio, got)
	assert.Equal(t, "/"+defaultVoiceID, gotPath)
	assert.Equal(t, "el-key", gotKey)
	assert.Equal(t, "नमस्ते", body["text"])
}

func TestElevenLabsClient_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte("quota exceeded"))
	}))
	defer srv.Close()

	_, err := NewElevenLabsClient("k", "voice", srv.URL).Synthesize(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 402")
	assert.Contains(t, err.Error(), "quota exceeded")
}

type stubSTT struct{ lang string }

func (s *stubSTT) Transcribe(_ context.Context, _ string, language string) (string, error) {
	s.lang = language
	return "text", nil
}

type stubTTS struct{}

func (stubTTS) Synthesize(context.Context, string) ([]byte, error) { return []byte("mp3"), nil }

func TestService_Delegates(t *testing.T) {
	stt := &stubSTT{}
	svc := NewService(stt, stubTTS{})

	text, err := svc.Transcribe(context.Background(), "/tmp/x.wav", "ta")
	require.NoError(t, err)
	assert.Equal(t, "text", text)
	assert.Equal(t, "ta", stt.lang)

	audio, err := svc.Synthesize(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3"), audio)
}
