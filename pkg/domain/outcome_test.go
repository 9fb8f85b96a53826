package domain

import (
	"strings"
	"testing"
)

func TestSummaryMessageEchoesPresentFields(t *testing.T) {
	record := ExtractedRecord{
		FieldName:       "Ana",
		FieldAge:        "25",
		FieldOccupation: "diseñadora",
		FieldProject:    NotSpecified,
		FieldStack:      "   ",
	}

	msg := SummaryMessage(record)

	for _, want := range []string{"**Nombre:** Ana", "**Edad:** 25", "**Ocupación:** diseñadora", "**Proyecto:** " + NotSpecified} {
		if !strings.Contains(msg, want) {
			t.Errorf("summary is missing %q:\n%s", want, msg)
		}
	}
	for _, unwanted := range []string{"Stack", "Hobby", "Info adicional"} {
		if strings.Contains(msg, unwanted) {
			t.Errorf("summary should not mention %q:\n%s", unwanted, msg)
		}
	}
}

func TestSummaryMessageEscapesMarkdown(t *testing.T) {
	msg := SummaryMessage(ExtractedRecord{FieldStack: "C*, node_js\n[go]"})

	if !strings.Contains(msg, `C\*, node\_js \[go\]`) {
		t.Errorf("stack value not escaped:\n%s", msg)
	}
}

func TestSummaryMessageEscapesTags(t *testing.T) {
	msg := SummaryMessage(ExtractedRecord{FieldStack: "HTML <div> y CSS"})

	if !strings.Contains(msg, `HTML \<div> y CSS`) {
		t.Errorf("tag not escaped:\n%s", msg)
	}
}

func TestOutcomeMessage(t *testing.T) {
	seen := make(map[string]OutcomeStatus)
	for _, status := range OutcomeStatuses {
		msg := OutcomeMessage(Outcome{Status: status, Record: ExtractedRecord{FieldName: "Ana"}})
		if msg == "" {
			t.Errorf("%s: empty message", status)
		}
		if other, ok := seen[msg]; ok {
			t.Errorf("%s and %s share the same message", status, other)
		}
		seen[msg] = status
	}
}
