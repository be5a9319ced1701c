package ai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepgramClient_Transcribe(t *testing.T) {
	var gotQuery, gotCT, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotCT = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"results":{"channels":[{"alternatives":[{"transcript":"hello"}]}]}}`)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "a.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3"), 0o600))

	c := NewDeepgramClient("dg-key", srv.URL)
	text, err := c.Transcribe(context.Background(), path, "hi")
	require.NoError(t, err)

	assert.Equal(t, "hello", text)
	assert.Equal(t, "Token dg-key", gotAuth)
	assert.Equal(t, "audio/mpeg", gotCT)
	assert.Contains(t, gotQuery, "language=hi")
}

func TestDeepgramClient_DetectLanguageWhenNoHint(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"results":{"channels":[{"alternatives":[{"transcript":"x"}]}]}}`)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "a.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o600))

	_, err := NewDeepgramClient("k", srv.URL).Transcribe(context.Background(), path, "")
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "detect_language=true")
	assert.NotContains(t, gotQuery, "language=&")
}

func TestDeepgramClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("language") == "bn" {
			_, _ = io.WriteString(w, `{"results":{"channels":[]}}`)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "bad key")
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "a.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o600))
	c := NewDeepgramClient("k", srv.URL)

	_, err := c.Transcribe(context.Background(), path, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")

	_, err = c.Transcribe(context.Background(), path, "bn")
	assert.EqualError(t, err, "empty transcript")

	_, err = c.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.wav"), "hi")
	assert.Error(t, err)
}
