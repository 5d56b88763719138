package models

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrValidation marks input rejected at the service boundary before any
// database call is attempted.
var ErrValidation = errors.New("validation failed")

// Decode converts a raw repository record into a typed model via JSON.
// Byte and string values holding JSON documents (the driver's view of
// jsonb columns) are inlined as raw JSON so nested structs decode.
func Decode(rec map[string]any, dst any) error {
	norm := make(map[string]any, len(rec))
	for k, v := range rec {
		switch t := v.(type) {
		case []byte:
			if json.Valid(t) {
				norm[k] = json.RawMessage(t)
			} else {
				norm[k] = string(t)
			}
		case string:
			if looksLikeJSON(t) {
				norm[k] = json.RawMessage(t)
			} else {
				norm[k] = v
			}
		case time.Time:
			norm[k] = t
		default:
			norm[k] = v
		}
	}

	b, err := json.Marshal(norm)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// DecodeAll decodes a slice of records into a slice of typed models.
func DecodeAll[T any](recs []map[string]any) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var item T
		if err := Decode(rec, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func looksLikeJSON(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		case '{', '[':
			return json.Valid([]byte(s))
		default:
			return false
		}
	}
	return false
}

// TotalPages computes the page count for offset/limit pagination.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
