package llm

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"

	"github.com/joseph-ayodele/medreport-summarizer/constants"
)

// entityTypeSynonyms maps labels models commonly emit to our entity types.
var entityTypeSynonyms = map[string]string{
	"disease":           constants.EntityDiagnosis,
	"disorder":          constants.EntityDiagnosis,
	"condition":         constants.EntityDiagnosis,
	"problem":           constants.EntityDiagnosis,
	"diagnoses":         constants.EntityDiagnosis,
	"drug":              constants.EntityMedication,
	"medicine":          constants.EntityMedication,
	"medications":       constants.EntityMedication,
	"treatment":         constants.EntityMedication,
	"test":              constants.EntityLab,
	"lab_result":        constants.EntityLab,
	"laboratory":        constants.EntityLab,
	"labs":              constants.EntityLab,
	"sex":               constants.EntityGender,
	"medical_record":    constants.EntityMRN,
	"medical_record_no": constants.EntityMRN,
}

// NormalizeAndSanitizeEntities rewrites an entity response so that it can
// pass the strict schema:
// - a top-level array or a synonym key ("results", "items") becomes "entities"
// - "label"/"category" become "type", and type synonyms are mapped
// - entries with empty text or an unknown type are dropped
// - unknown keys are removed
func NormalizeAndSanitizeEntities(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string
	var list []any
	switch t := doc.(type) {
	case []any:
		list = t
	case map[string]any:
		for _, k := range []string{"entities", "results", "items", "data"} {
			if v, ok := t[k].([]any); ok {
				list = v
				if k != "entities" {
					dropped = append(dropped, k+"->entities")
				}
				break
			}
		}
	}

	known := make(map[string]struct{}, len(constants.EntityTypes))
	for _, t := range constants.EntityTypes {
		known[t] = struct{}{}
	}

	clean := make([]map[string]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("entities[%d](type)", i))
			continue
		}
		text, _ := m["text"].(string)
		if text == "" {
			text, _ = m["entity"].(string)
		}
		typ, _ := m["type"].(string)
		if typ == "" {
			if s, ok := m["label"].(string); ok {
				typ = s
			} else if s, ok := m["category"].(string); ok {
				typ = s
			}
		}
		text = strings.TrimSpace(text)
		typ = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(typ), " ", "_"))
		if syn, ok := entityTypeSynonyms[typ]; ok {
			typ = syn
		}
		if text == "" {
			dropped = append(dropped, fmt.Sprintf("entities[%d](empty)", i))
			continue
		}
		if _, ok := known[typ]; !ok {
			dropped = append(dropped, fmt.Sprintf("entities[%d](%s)", i, typ))
			continue
		}
		clean = append(clean, map[string]any{"text": text, "type": typ})
	}

	out, err := json.Marshal(map[string]any{"entities": clean})
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.entities.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}
