package domain

import "strings"

// NotSpecified is the placeholder for information the speaker did not give.
const NotSpecified = "No especificado"

type Field string

const (
	FieldName           Field = "name"
	FieldAge            Field = "age"
	FieldOccupation     Field = "occupation"
	FieldProject        Field = "project"
	FieldStack          Field = "stack"
	FieldHobby          Field = "hobby"
	FieldAdditionalInfo Field = "additional_info"
)

// RecordFields lists the extracted fields in ledger column order.
var RecordFields = []Field{
	FieldName,
	FieldAge,
	FieldOccupation,
	FieldProject,
	FieldStack,
	FieldHobby,
	FieldAdditionalInfo,
}

// ExtractedRecord maps each field the model returned to its text.
// Fields the model omitted are absent.
type ExtractedRecord map[Field]string

func (r ExtractedRecord) IsEmpty() bool {
	return len(r) == 0
}

func (r ExtractedRecord) Get(f Field) (string, bool) {
	v, ok := r[f]
	return v, ok
}

// ValueOr returns the field value, or def when the field is absent.
func (r ExtractedRecord) ValueOr(f Field, def string) string {
	if v, ok := r[f]; ok {
		return v
	}
	return def
}

// Present reports whether the field is in the record with a non-blank value.
// NotSpecified counts as present.
func (r ExtractedRecord) Present(f Field) bool {
	return strings.TrimSpace(r[f]) != ""
}
