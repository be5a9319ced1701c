package presentation

import (
	"embed"
	"html/template"
	"io"

	"github.com/Vovarama1992/voice_translator/internal/languages"
	"github.com/Vovarama1992/voice_translator/internal/session"
)

const (
	DownloadFilename = "output.mp3"
	DownloadMIME     = "audio/mp3"

	downloadPath    = "/download"
	audioOutputPath = "/audio/output"
	audioInputPath  = "/audio/input"
)

//go:embed templates/*.html
var templatesFS embed.FS

var page = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// View строится только из состояния сессии, своего состояния нет.
type View struct {
	Languages  []string `json:"languages"`
	SourceLang string   `json:"source_lang"`
	TargetLang string   `json:"target_lang"`

	HasInput      bool   `json:"has_input"`
	InputAudioURL string `json:"input_audio_url,omitempty"`

	Transcript     string `json:"transcript,omitempty"`
	TranslatedText string `json:"translated_text,omitempty"`

	HasAudio    bool   `json:"has_audio"`
	AudioURL    string `json:"audio_url,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`

	Error string `json:"error,omitempty"`
}

func NewView(st *session.State) View {
	v := View{
		Languages:      languages.Names(),
		SourceLang:     st.SourceLang,
		TargetLang:     st.TargetLang,
		HasInput:       st.HasAudio(),
		Transcript:     st.Transcript,
		TranslatedText: st.TranslatedText,
		HasAudio:       len(st.AudioOutput) > 0,
		Error:          st.LastError,
	}
	if v.SourceLang == "" {
		v.SourceLang = languages.DefaultSource()
	}
	if v.TargetLang == "" {
		v.TargetLang = languages.DefaultTarget()
	}
	if v.HasInput {
		v.InputAudioURL = audioInputPath
	}
	if v.HasAudio {
		v.AudioURL = audioOutputPath
		v.DownloadURL = downloadPath
	}
	return v
}

func (v View) ShowTranscript() bool  { return v.Transcript != "" }
func (v View) ShowTranslation() bool { return v.TranslatedText != "" }

func Render(w io.Writer, v View) error {
	return page.Execute(w, v)
}
