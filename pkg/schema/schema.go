// Package schema reflects Go argument structs into the JSON schemas
// advertised as tool input schemas.
package schema

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	cache   = make(map[reflect.Type]*Schema)
	cacheMu sync.Mutex
)

// Schema is the reflected schema of a type.
type Schema struct {
	RawSchema *jsonschema.Schema
	// Parameters is the flattened object schema, with all references resolved
	Parameters *jsonschema.Schema
}

// New creates a new schema from the given type.
// Results are cached per type.
func New(t reflect.Type) (*Schema, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.Errorf("schema: %s is not a struct", t)
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if s, ok := cache[t]; ok {
		return s, nil
	}

	raw := JSONSchema(t)
	params, err := ToParameters(raw)
	if err != nil {
		return nil, errors.WithMessagef(err, "schema: %s", t)
	}

	s := &Schema{
		RawSchema:  raw,
		Parameters: params,
	}
	cache[t] = s
	return s, nil
}

// Properties returns the names of the top level properties, in declaration order.
func (s *Schema) Properties() []string {
	var names []string
	if s.Parameters.Properties == nil {
		return names
	}
	for pair := s.Parameters.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Property returns the schema of a top level property.
func (s *Schema) Property(name string) (*jsonschema.Schema, bool) {
	if s.Parameters.Properties == nil {
		return nil, false
	}
	return s.Parameters.Properties.Get(name)
}

// IsRequired returns true if the property is required.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Parameters.Required {
		if r == name {
			return true
		}
	}
	return false
}

func (s *Schema) String() string {
	js, _ := json.MarshalIndent(s.Parameters, "", "\t")
	return string(js)
}

// ToParameters flattens the reflected schema into a single object schema.
func ToParameters(raw *jsonschema.Schema) (*jsonschema.Schema, error) {
	refID := strings.TrimPrefix(raw.Ref, "#/$defs/")

	defs := make(map[string]*jsonschema.Schema)
	root := raw
	for name, def := range raw.Definitions {
		if name == refID {
			root = def
		} else {
			defs[name] = def
		}
	}

	res := &jsonschema.Schema{
		Type:       root.Type,
		Properties: root.Properties,
		Required:   root.Required,
	}
	if res.Properties == nil {
		res.Properties = orderedmap.New[string, *jsonschema.Schema]()
	}

	if err := resolveRefs(res.Properties, defs); err != nil {
		return nil, err
	}
	return res, nil
}

func resolveRefs(props *orderedmap.OrderedMap[string, *jsonschema.Schema], defs map[string]*jsonschema.Schema) error {
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		child := pair.Value
		if child.Ref != "" {
			def, err := lookup(child.Ref, defs)
			if err != nil {
				return errors.WithMessagef(err, "property %q", pair.Key)
			}
			pair.Value = def
			child = def
		}
		if child.Properties != nil {
			if err := resolveRefs(child.Properties, defs); err != nil {
				return err
			}
		}
		if child.Items != nil && child.Items.Ref != "" {
			def, err := lookup(child.Items.Ref, defs)
			if err != nil {
				return errors.WithMessagef(err, "items of %q", pair.Key)
			}
			child.Items = def
		}
	}
	return nil
}

func lookup(ref string, defs map[string]*jsonschema.Schema) (*jsonschema.Schema, error) {
	name := strings.TrimPrefix(ref, "#/$defs/")
	if def, ok := defs[name]; ok {
		return def, nil
	}
	return nil, errors.Errorf("definition not found: %s", ref)
}

// JSONSchema returns the json schema of the type
func JSONSchema(t reflect.Type) *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}

	// Types with the same name in different packages would otherwise
	// resolve to the same `$ref`, see https://github.com/invopop/jsonschema/issues/42
	r.Namer = func(t reflect.Type) string {
		name := t.Name()
		if t.Kind() == reflect.Struct {
			fullname := t.PkgPath() + "/" + t.Name()
			name = t.Name() + "@" + strconv.FormatUint(xxhash.Sum64String(fullname), 10)
		}
		return name
	}

	return r.ReflectFromType(t)
}
