package pipeline

import "time"

type Stage string

const (
	StageTranscribe Stage = "transcribe"
	StageTranslate  Stage = "translate"
	StageSynthesize Stage = "synthesize"
)

// StageResult — либо полезная нагрузка, либо ошибка стадии.
type StageResult struct {
	Stage Stage
	Text  string
	Audio []byte
	Err   error
	Took  time.Duration
}

func (r StageResult) OK() bool { return r.Err == nil }

// Result одного запуска. Err без FailedStage — запуск отклонён до первой стадии.
type Result struct {
	Stages      []StageResult
	FailedStage Stage
	Err         error
	AudioURL    string
}

func (r Result) Succeeded() bool { return r.Err == nil }

// Started — была ли вызвана хотя бы одна удалённая стадия.
func (r Result) Started() bool { return len(r.Stages) > 0 }

// Message — текст для пользователя.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return "Error: " + r.Err.Error()
}
