package json

import (
	"encoding/json"

	"github.com/bububa/ljson"
	"github.com/effective-security/sonarmcp/utils"
)

type Encoder struct {
	indent string
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// WithIndent enables indented output.
func (e *Encoder) WithIndent(indent string) *Encoder {
	e.indent = indent
	return e
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	if e.indent == "" {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", e.indent)
}

// Unmarshal decodes JSON surrounded by prose or a markdown fence.
func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	return ljson.Unmarshal(utils.CleanJSON(bs), ret)
}
