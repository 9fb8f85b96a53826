package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dskvich/networker-bot/pkg/domain"
)

// StripCodeFence removes a surrounding ``` or ```json fence, if any.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && isFenceTag(s[:i]) {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}

func isFenceTag(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "json")
}

// Parse decodes the model output into a record. Only the known fields are
// kept; non-string values (e.g. a numeric age) are kept in their JSON text
// form and nulls are dropped.
func Parse(raw string) (domain.ExtractedRecord, error) {
	body := StripCodeFence(raw)

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: decoding model output: %w", domain.ErrMalformedExtraction, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON object", domain.ErrMalformedExtraction)
	}

	record := make(domain.ExtractedRecord, len(domain.RecordFields))
	for _, f := range domain.RecordFields {
		v, ok := fields[string(f)]
		if !ok || v == nil {
			continue
		}
		record[f] = stringify(v)
	}

	return record, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(bytes.TrimSpace(b))
	}
}
