package domain

import "strings"

// Stage is a step of voice note ingestion. Stages only move forward.
type Stage int

const (
	StageReceived Stage = iota
	StageDownloaded
	StageTranscribing
	StageTranscribed
	StageExtracting
	StageSaving

	stageComplete
)

func (s Stage) String() string {
	switch s {
	case StageReceived:
		return "received"
	case StageDownloaded:
		return "downloaded"
	case StageTranscribing:
		return "transcribing"
	case StageTranscribed:
		return "transcribed"
	case StageExtracting:
		return "extracting"
	case StageSaving:
		return "saving"
	default:
		return "unknown"
	}
}

type progressStep struct {
	done    Stage
	running Stage
	doneMsg string
	runMsg  string
}

var progressSteps = []progressStep{
	{done: StageDownloaded, running: StageReceived, doneMsg: "🎧 Audio descargado ✅", runMsg: "🎧 Descargando audio..."},
	{done: StageTranscribed, running: StageTranscribing, doneMsg: "📝 Transcripción completada ✅", runMsg: "📝 Transcribiendo..."},
	{done: StageSaving, running: StageExtracting, doneMsg: "🤖 Información extraída ✅", runMsg: "🤖 Extrayendo información..."},
	{done: stageComplete, running: StageSaving, doneMsg: "", runMsg: "📊 Guardando en base de datos..."},
}

// ProgressText renders the status message shown while a submission is at
// the given stage: completed steps are ticked, the current one is pending.
func ProgressText(stage Stage) string {
	if stage == StageReceived {
		return ProcessingMessage
	}

	var lines []string
	for _, step := range progressSteps {
		switch {
		case stage >= step.done:
			lines = append(lines, step.doneMsg)
		case stage >= step.running:
			lines = append(lines, step.runMsg)
		}
	}
	return strings.Join(lines, "\n")
}
