package domain

import "strings"

type OutcomeStatus string

const (
	OutcomeSaved        OutcomeStatus = "saved"
	OutcomeUnclearAudio OutcomeStatus = "unclear_audio"
	OutcomeNoExtraction OutcomeStatus = "no_extraction"
	OutcomeSaveFailed   OutcomeStatus = "save_failed"
	OutcomeTimedOut     OutcomeStatus = "timed_out"
	OutcomeFailed       OutcomeStatus = "failed"
)

var OutcomeStatuses = []OutcomeStatus{
	OutcomeSaved,
	OutcomeUnclearAudio,
	OutcomeNoExtraction,
	OutcomeSaveFailed,
	OutcomeTimedOut,
	OutcomeFailed,
}

// Outcome is the terminal state of one submission.
type Outcome struct {
	SubmissionID string
	Status       OutcomeStatus
	Transcript   string
	Record       ExtractedRecord
	Err          error
}

const (
	unclearAudioMessage = "❌ No se pudo transcribir el audio.\nPor favor, intenta de nuevo con una nota de voz más clara."
	noExtractionMessage = "❌ No se pudo extraer información estructurada.\nPor favor, intenta de nuevo con una presentación más detallada."
	saveFailedMessage   = "❌ Error al guardar la información.\nPor favor, intenta de nuevo."
	timedOutMessage     = "⌛ El procesamiento tardó demasiado.\nPor favor, intenta de nuevo en unos minutos."
	failedMessage       = "❌ Ocurrió un error al procesar tu presentación.\nPor favor, intenta de nuevo."
)

var summaryLabels = map[Field]string{
	FieldName:           "👤 **Nombre:**",
	FieldAge:            "🎂 **Edad:**",
	FieldOccupation:     "💼 **Ocupación:**",
	FieldProject:        "🚀 **Proyecto:**",
	FieldStack:          "⚡ **Stack/Expertise:**",
	FieldHobby:          "🎯 **Hobby/Dato Curioso:**",
	FieldAdditionalInfo: "ℹ️ **Info adicional:**",
}

// OutcomeMessage is the single chat message that closes a submission.
func OutcomeMessage(o Outcome) string {
	switch o.Status {
	case OutcomeSaved:
		return SummaryMessage(o.Record)
	case OutcomeUnclearAudio:
		return unclearAudioMessage
	case OutcomeNoExtraction:
		return noExtractionMessage
	case OutcomeSaveFailed:
		return saveFailedMessage
	case OutcomeTimedOut:
		return timedOutMessage
	default:
		return failedMessage
	}
}

// SummaryMessage echoes every present field of the record.
func SummaryMessage(record ExtractedRecord) string {
	var b strings.Builder
	b.WriteString("✅ **¡Presentación procesada exitosamente!**\n\n")
	b.WriteString("📋 **Información extraída:**\n")

	for _, f := range RecordFields {
		if !record.Present(f) {
			continue
		}
		b.WriteString(summaryLabels[f])
		b.WriteString(" ")
		b.WriteString(escapeMarkdown(strings.Join(strings.Fields(record[f]), " ")))
		b.WriteString("\n")
	}

	b.WriteString("\n🎉 **¡Tu información ha sido guardada para networking!**\n\n")
	b.WriteString("¿Quieres enviar otra presentación? 🎤\n")
	b.WriteString("Simplemente envía otra nota de voz o usa /start para ver el menú.")

	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
