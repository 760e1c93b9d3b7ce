package yaml

import (
	"bytes"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/effective-security/sonarmcp/utils"
	"gopkg.in/yaml.v3"
)

type CommentStyle int

const (
	NoComment CommentStyle = iota
	HeadComment
	LineComment
	FootComment
)

type Encoder struct {
	commentStyle CommentStyle
}

func NewEncoder() *Encoder {
	return &Encoder{commentStyle: NoComment}
}

// WithCommentStyle renders the `comment` tag, or the jsonschema description,
// of struct fields as YAML comments.
func (e *Encoder) WithCommentStyle(style CommentStyle) *Encoder {
	e.commentStyle = style
	return e
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	var doc any = v
	if e.commentStyle != NoComment {
		node, err := e.valueNode(reflect.ValueOf(v))
		if err != nil {
			return nil, err
		}
		doc = node
	}

	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	data := utils.BytesTrimBackticks(bs)
	return yaml.Unmarshal(data, ret)
}

// structNode converts a struct to a YAML mapping node with comments
func (e *Encoder) structNode(val reflect.Value) (*yaml.Node, error) {
	typ := val.Type()
	root := &yaml.Node{Kind: yaml.MappingNode}

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		key, opts, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if key == "-" {
			continue
		}
		if key == "" {
			key = strings.ToLower(field.Name)
		}
		fv := val.Field(i)
		if strings.Contains(opts, "omitempty") && fv.IsZero() {
			continue
		}

		comment := field.Tag.Get("comment")
		if comment == "" {
			comment = extractDescription(field.Tag.Get("jsonschema"))
		}

		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
		if comment != "" {
			switch e.commentStyle {
			case HeadComment:
				keyNode.HeadComment = comment
			case LineComment:
				keyNode.LineComment = comment
			case FootComment:
				keyNode.FootComment = comment
			}
		}

		valueNode, err := e.valueNode(fv)
		if err != nil {
			return nil, err
		}
		root.Content = append(root.Content, keyNode, valueNode)
	}

	return root, nil
}

var nullNode = yaml.Node{Kind: yaml.ScalarNode, Value: "null", Tag: "!!null"}

// valueNode converts a value, supporting pointers and interfaces
func (e *Encoder) valueNode(v reflect.Value) (*yaml.Node, error) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			n := nullNode
			return &n, nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		n := nullNode
		return &n, nil
	}

	switch v.Kind() {
	case reflect.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: v.String(), Tag: "!!str"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatInt(v.Int(), 10), Tag: "!!int"}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatUint(v.Uint(), 10), Tag: "!!int"}, nil
	case reflect.Float32, reflect.Float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(v.Float(), 'g', -1, 64), Tag: "!!float"}, nil
	case reflect.Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatBool(v.Bool()), Tag: "!!bool"}, nil
	case reflect.Map:
		return e.mapNode(v)
	case reflect.Struct:
		return e.structNode(v)
	case reflect.Slice, reflect.Array:
		return e.sliceNode(v)
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprintf("%v", v.Interface())}, nil
	}
}

// mapNode converts a map, with keys sorted
func (e *Encoder) mapNode(v reflect.Value) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	for _, key := range keys {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprint(key.Interface())}
		valueNode, err := e.valueNode(v.MapIndex(key))
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}

func (e *Encoder) sliceNode(v reflect.Value) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode}
	for i := 0; i < v.Len(); i++ {
		n, err := e.valueNode(v.Index(i))
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, n)
	}
	return node, nil
}

var descriptionTag = regexp.MustCompile(`description=([^,]+)`)

// extractDescription parses the description from a jsonschema tag
func extractDescription(tag string) string {
	matches := descriptionTag.FindStringSubmatch(tag)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return ""
}
