package memory

import (
	"encoding/json"
	"time"

	"github.com/kiverlab/codegraph/internal/vectorstore"
)

func toPayload(m *Memory) (map[string]any, error) {
	payload := map[string]any{
		"id":         m.ID,
		"project":    m.ProjectID,
		"type":       string(m.Type),
		"content":    m.Content,
		"relatedTo":  m.RelatedTo,
		"createdAt":  m.CreatedAt.Format(time.RFC3339),
		"updatedAt":  m.UpdatedAt.Format(time.RFC3339),
		"source":     m.Source,
		"confidence": m.Confidence,
		"validated":  m.Validated,
	}
	if len(m.Tags) > 0 {
		payload["tags"] = m.Tags
	}
	if m.Type == TypeTodo {
		payload["status"] = string(m.Status)
		history, err := json.Marshal(m.StatusHistory)
		if err != nil {
			return nil, err
		}
		payload["statusHistory"] = string(history)
	}
	if len(m.Metadata) > 0 {
		meta, err := json.Marshal(m.Metadata)
		if err != nil {
			return nil, err
		}
		payload["metadata"] = string(meta)
	}
	return payload, nil
}

func fromResult(r vectorstore.SearchResult) (*Memory, error) {
	p := r.Payload
	m := &Memory{
		ID:        stringField(p, "id"),
		ProjectID: stringField(p, "project"),
		Type:      Type(stringField(p, "type")),
		Content:   stringField(p, "content"),
		RelatedTo: stringField(p, "relatedTo"),
		Source:    stringField(p, "source"),
		Validated: boolField(p, "validated"),
	}
	if m.ID == "" {
		m.ID = r.ID
	}
	m.CreatedAt = parseTime(stringField(p, "createdAt"))
	m.UpdatedAt = parseTime(stringField(p, "updatedAt"))
	m.Confidence = floatField(p, "confidence")
	m.Tags = stringSliceField(p, "tags")

	if status := stringField(p, "status"); status != "" {
		m.Status = TodoStatus(status)
	}
	if raw := stringField(p, "statusHistory"); raw != "" {
		var history []StatusEntry
		if err := json.Unmarshal([]byte(raw), &history); err == nil {
			m.StatusHistory = history
		}
	}
	if raw := stringField(p, "metadata"); raw != "" {
		var meta map[string]any
		if err := json.Unmarshal([]byte(raw), &meta); err == nil {
			m.Metadata = meta
		}
	}
	return m, nil
}

func stringField(p map[string]any, key string) string {
	v, _ := p[key].(string)
	return v
}

func boolField(p map[string]any, key string) bool {
	v, _ := p[key].(bool)
	return v
}

func floatField(p map[string]any, key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	default:
		return 0
	}
}

func stringSliceField(p map[string]any, key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
