// Package encoding renders values in the output formats offered to clients
// and decodes documents supplied by operators.
package encoding

import (
	"bytes"
	"strings"

	"github.com/cockroachdb/errors"
	jsonenc "github.com/effective-security/sonarmcp/encoding/json"
	textenc "github.com/effective-security/sonarmcp/encoding/text"
	tomlenc "github.com/effective-security/sonarmcp/encoding/toml"
	yamlenc "github.com/effective-security/sonarmcp/encoding/yaml"
)

// Encoder marshals values in a single format.
type Encoder interface {
	Marshal(v any) ([]byte, error)
}

// Decoder unmarshals documents in a single format.
type Decoder interface {
	Unmarshal([]byte, any) error
}

type Mode = string

const (
	ModeText Mode = "text"
	ModeJSON Mode = "json"
	ModeYAML Mode = "yaml"
	ModeTOML Mode = "toml"
)

// Modes lists the supported modes.
var Modes = []Mode{ModeText, ModeJSON, ModeYAML, ModeTOML}

// NewEncoder returns the encoder for the mode.
func NewEncoder(mode Mode) (Encoder, error) {
	switch mode {
	case ModeText, "":
		return textenc.NewEncoder(), nil
	case ModeJSON:
		return jsonenc.NewEncoder().WithIndent("  "), nil
	case ModeYAML:
		return yamlenc.NewEncoder().WithCommentStyle(yamlenc.HeadComment), nil
	case ModeTOML:
		return tomlenc.NewEncoder(), nil
	default:
		return nil, errors.Errorf("unsupported encoding mode: %q", mode)
	}
}

// NewDecoder returns the decoder for the mode.
func NewDecoder(mode Mode) (Decoder, error) {
	switch mode {
	case ModeJSON:
		return jsonenc.NewEncoder(), nil
	case ModeYAML:
		return yamlenc.NewEncoder(), nil
	case ModeTOML:
		return tomlenc.NewEncoder(), nil
	default:
		return nil, errors.Errorf("unsupported decoding mode: %q", mode)
	}
}

// Marshal returns v encoded in the mode.
func Marshal(mode Mode, v any) (string, error) {
	enc, err := NewEncoder(mode)
	if err != nil {
		return "", err
	}
	bs, err := enc.Marshal(v)
	if err != nil {
		return "", errors.Wrapf(err, "failed to encode %s", mode)
	}
	return string(bs), nil
}

// Unmarshal decodes a JSON, YAML or TOML document into v.
// The document may be wrapped in a markdown fence.
func Unmarshal(bs []byte, v any) error {
	mode := DetectMode(bs)
	dec, err := NewDecoder(mode)
	if err != nil {
		return err
	}
	if err = dec.Unmarshal(bs, v); err != nil {
		return errors.Wrapf(err, "failed to decode %s", mode)
	}
	return nil
}

var fence = []byte("```")

// DetectMode returns the format of the document: the language tag of
// its markdown fence if any, otherwise guessed from the first line.
func DetectMode(bs []byte) Mode {
	doc := bytes.TrimSpace(bs)
	if rest, ok := bytes.CutPrefix(doc, fence); ok {
		tag, body, _ := bytes.Cut(rest, []byte("\n"))
		switch strings.ToLower(strings.TrimSpace(string(tag))) {
		case ModeJSON:
			return ModeJSON
		case ModeYAML, "yml":
			return ModeYAML
		case ModeTOML:
			return ModeTOML
		}
		doc = bytes.TrimSpace(body)
	}

	if len(doc) == 0 {
		return ModeYAML
	}
	if doc[0] == '{' {
		return ModeJSON
	}

	line, _, _ := bytes.Cut(doc, []byte("\n"))
	line = bytes.TrimSpace(line)
	if doc[0] == '[' {
		// a TOML table header or a JSON array
		if bytes.HasSuffix(line, []byte("]")) && !bytes.ContainsAny(line, `,"{`) {
			return ModeTOML
		}
		return ModeJSON
	}

	eq := bytes.IndexByte(line, '=')
	colon := bytes.IndexByte(line, ':')
	if eq > 0 && (colon < 0 || eq < colon) {
		return ModeTOML
	}
	return ModeYAML
}

var (
	_ Encoder = (*jsonenc.Encoder)(nil)
	_ Encoder = (*textenc.Encoder)(nil)
	_ Encoder = (*tomlenc.Encoder)(nil)
	_ Encoder = (*yamlenc.Encoder)(nil)
	_ Decoder = (*jsonenc.Encoder)(nil)
	_ Decoder = (*tomlenc.Encoder)(nil)
	_ Decoder = (*yamlenc.Encoder)(nil)
)
