package extraction

import (
	"fmt"

	"github.com/dskvich/networker-bot/pkg/domain"
)

const promptTemplate = `Analiza esta presentación personal y extrae la información más relevante para cada campo.
La persona puede presentarse de manera formal, informal, completa o parcial.

AUDIO TRANSCRITO:
"%s"

INSTRUCCIONES:
- Analiza el contenido y mapea la información a los campos correspondientes
- Si no hay información clara para un campo, usa "%[2]s"
- Información relevante que no encaje en campos específicos va en "%[3]s"
- Sé flexible con diferentes formas de expresar la misma información

CAMPOS A COMPLETAR:
- %[4]s: Nombre completo o como se presenta la persona
- %[5]s: Edad numérica, rango de edad, o "%[2]s"
- %[6]s: Trabajo, profesión, carrera, estudios, o rol principal
- %[7]s: Proyecto actual, trabajo en curso, startup, idea, o actividad principal
- %[8]s: Tecnologías, herramientas, lenguajes, frameworks, áreas de expertise, habilidades técnicas
- %[9]s: Pasatiempos, intereses personales, deportes, aficiones
- %[3]s: Cualquier información relevante que no encaje en los campos anteriores (ubicación, experiencia, metas, contexto del evento, etc.)

EJEMPLOS DE MAPEO:
- "Soy de México" → %[3]s: "De México"
- "Llevo 5 años programando" → %[3]s: "5 años de experiencia programando"
- "Quiero aprender IA" → %[3]s: "Interesado en aprender IA"
- "Vine al hackaton para conocer gente" → %[3]s: "Participante del hackaton, busca networking"

RETORNA SOLO UN JSON VÁLIDO CON ESTOS CAMPOS:
{
    "%[4]s": "...",
    "%[5]s": "...",
    "%[6]s": "...",
    "%[7]s": "...",
    "%[8]s": "...",
    "%[9]s": "...",
    "%[3]s": "..."
}

IMPORTANTE: Solo retorna el JSON, sin explicaciones adicionales.`

// Prompt builds the extraction instruction for one transcript.
func Prompt(transcript string) string {
	return fmt.Sprintf(promptTemplate,
		transcript,
		domain.NotSpecified,
		domain.FieldAdditionalInfo,
		domain.FieldName,
		domain.FieldAge,
		domain.FieldOccupation,
		domain.FieldProject,
		domain.FieldStack,
		domain.FieldHobby,
	)
}
