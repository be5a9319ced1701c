package presentation

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/voice_translator/internal/session"
)

func TestNewView_Empty(t *testing.T) {
	v := NewView(session.New("s1"))

	assert.Len(t, v.Languages, 22)
	assert.Equal(t, "Hindi", v.SourceLang)
	assert.Equal(t, "Maithili", v.TargetLang)
	assert.False(t, v.HasInput)
	assert.False(t, v.ShowTranscript())
	assert.False(t, v.ShowTranslation())
	assert.False(t, v.HasAudio)
	assert.Empty(t, v.DownloadURL)
}

func TestNewView_Populated(t *testing.T) {
	st := session.New("s1")
	st.AudioFilePath = "/tmp/x.wav"
	st.Transcript = "नमस्ते"
	st.TranslatedText = "प्रणाम"
	st.AudioOutput = []byte("mp3")

	v := NewView(st)
	assert.True(t, v.HasInput)
	assert.Equal(t, "/audio/input", v.InputAudioURL)
	assert.True(t, v.ShowTranscript())
	assert.True(t, v.ShowTranslation())
	assert.True(t, v.HasAudio)
	assert.Equal(t, "/audio/output", v.AudioURL)
	assert.Equal(t, "/download", v.DownloadURL)
}

func TestRender_PartialSuccess(t *testing.T) {
	st := session.New("s1")
	st.AudioFilePath = "/tmp/x.wav"
	st.Transcript = "नमस्ते"
	st.LastError = "Error: model overloaded"

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, NewView(st)))
	html := buf.String()

	assert.Contains(t, html, "Original (Hindi)")
	assert.Contains(t, html, "नमस्ते")
	assert.Contains(t, html, "Error: model overloaded")
	assert.NotContains(t, html, "Translated (")
	assert.NotContains(t, html, "📥 Download")
	assert.Contains(t, html, "Transcribe &amp; Translate")
}

func TestRender_NoAudioHidesTrigger(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, NewView(session.New("s1"))))

	assert.NotContains(t, buf.String(), "Transcribe &amp; Translate")
	// выбор по умолчанию
	assert.True(t, strings.Contains(buf.String(), "<option selected>Maithili</option>"))
}

func TestRender_EscapesText(t *testing.T) {
	st := session.New("s1")
	st.Transcript = "<script>alert(1)</script>"

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, NewView(st)))
	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
}
