package domain

import "fmt"

const (
	RecordButtonLabel = "🎤 Grabar Presentación"

	ProcessingMessage = "🎧 Procesando tu presentación...\n⏳ Esto puede tomar unos segundos."

	RecordingInstructionsMessage = `🎤 **¡Perfecto! Ahora graba tu presentación**

**Incluye en tu voice note:**
• Tu nombre completo
• Tu edad
• Tu ocupación/profesión
• Proyecto actual en el que trabajas
• Stack tecnológico o área de expertise
• Hobby o dato curioso sobre ti

**Ejemplo:**
*"Hola, soy María González, tengo 28 años, soy desarrolladora fullstack, actualmente trabajo en un proyecto de e-commerce usando React y Node.js, y en mi tiempo libre me gusta practicar surf"*

🎙️ **Envía tu voice note ahora** 👇

⏱️ **Recomendación:** Habla entre 30-60 segundos para mejores resultados.`

	UnknownActionMessage = "❌ Acción no reconocida. Envía /start para comenzar de nuevo."

	AwaitingVoiceReminderMessage = "🎙️ Estoy esperando tu nota de voz. Grábala y envíamela para continuar."

	StartHintMessage = "👋 Envía /start para ver el menú."
)

func WelcomeMessage(organizer, eventName string) string {
	return fmt.Sprintf(`🤖 **¡Hola! Soy Networker Bot**

*Powered by %s*

Automatizo el proceso de networking extrayendo información de tus presentaciones en voice notes.

**¿Cómo funciona?**
1️⃣ Presiona el botón "%s"
2️⃣ Envía un voice note presentándote
3️⃣ Yo extraigo tu información automáticamente
4️⃣ La guardo en una base de datos organizada

**Evento:** %s

¡Presiona el botón para empezar! 👇`, organizer, RecordButtonLabel, eventName)
}

func WelcomeKeyboard() *Keyboard {
	return &Keyboard{
		Rows: [][]Button{
			{{Label: RecordButtonLabel, CallbackData: StartRecordingCallback}},
		},
	}
}
