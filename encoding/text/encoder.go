package text

import (
	"encoding/json"
)

type Stringer interface {
	String() string
}

// Encoder renders values as plain text,
// using String() when available and indented JSON otherwise.
type Encoder struct{}

func NewEncoder() *Encoder {
	return new(Encoder)
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	switch s := v.(type) {
	case Stringer:
		return []byte(s.String()), nil
	case string:
		return []byte(s), nil
	case []byte:
		return s, nil
	case *string:
		return []byte(*s), nil
	}
	return json.MarshalIndent(v, "", "  ")
}
