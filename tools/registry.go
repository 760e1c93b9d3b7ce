package tools

import (
	"maps"
	"reflect"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/sonarmcp/pkg/sonar"
	"github.com/effective-security/sonarmcp/pkg/toolerr"
	"github.com/effective-security/xlog"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/sonarmcp", "tools")

// Registry is the fixed set of tools.
// It is read-only after creation and safe for concurrent use.
type Registry struct {
	tools    []*Definition
	byName   map[string]*Definition
	models   map[string]struct{}
	validate *validator.Validate
}

// RegistryOption configures the registry.
type RegistryOption func(*Registry)

// WithModels adds models accepted in addition to the built-in ones.
func WithModels(models ...string) RegistryOption {
	return func(r *Registry) {
		for _, m := range models {
			r.models[m] = struct{}{}
		}
	}
}

// NewRegistry returns the registry of all tools.
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*Definition),
		models: make(map[string]struct{}),
	}
	for _, m := range sonar.Models {
		r.models[m] = struct{}{}
	}
	for _, opt := range opts {
		opt(r)
	}

	r.validate = validator.New(validator.WithRequiredStructEnabled())
	r.validate.RegisterTagNameFunc(jsonFieldName)
	if err := r.validate.RegisterValidation("model", func(fl validator.FieldLevel) bool {
		_, ok := r.models[fl.Field().String()]
		return ok
	}); err != nil {
		return nil, errors.WithStack(err)
	}

	for _, def := range definitions {
		d, err := def()
		if err != nil {
			return nil, err
		}
		r.tools = append(r.tools, d)
		r.byName[d.Name()] = d
	}
	return r, nil
}

// List returns the tools in registration order.
func (r *Registry) List() []ITool {
	list := make([]ITool, 0, len(r.tools))
	for _, t := range r.tools {
		list = append(list, t)
	}
	return list
}

// Get returns the tool by name.
func (r *Registry) Get(name string) (*Definition, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Models returns the sorted list of accepted models.
func (r *Registry) Models() []string {
	return slices.Sorted(maps.Keys(r.models))
}

// IsSupportedModel returns true if the model is accepted.
func (r *Registry) IsSupportedModel(model string) bool {
	_, ok := r.models[model]
	return ok
}

// Validate decodes and validates the call arguments,
// returning the typed argument record of the tool.
func (r *Registry) Validate(call *ToolCall) (Args, error) {
	def, ok := r.byName[call.Name]
	if !ok {
		return nil, toolerr.InvalidArgf("name", "unknown tool %q", call.Name)
	}

	for _, k := range slices.Sorted(maps.Keys(call.Arguments)) {
		if !def.hasArgument(k) {
			return nil, toolerr.InvalidArgf(k, "unknown argument %q for tool %s", k, def.Name())
		}
	}

	args := def.newArgs()
	if err := decodeArgs(call.Arguments, args); err != nil {
		return nil, err
	}

	if err := r.validate.Struct(args); err != nil {
		return nil, r.validationError(err)
	}

	logger.KV(xlog.DEBUG, "status", "validated", "tool", def.Name())
	return args, nil
}

func decodeArgs(input map[string]any, out any) error {
	if len(input) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}
	if err = decoder.Decode(input); err != nil {
		return decodeError(err)
	}
	return nil
}

var fieldInError = regexp.MustCompile(`'([^'\[\].]+)`)

// decodeError converts the first mapstructure error into InvalidArgument,
// mapstructure messages start with the quoted field name.
func decodeError(err error) error {
	msg := err.Error()
	var merr *mapstructure.Error
	if errors.As(err, &merr) && len(merr.Errors) > 0 {
		list := slices.Clone(merr.Errors)
		sort.Strings(list)
		msg = list[0]
	}
	field := ""
	if m := fieldInError.FindStringSubmatch(msg); len(m) == 2 {
		field = m[1]
	}
	return toolerr.InvalidArgf(field, "invalid argument: %s", msg)
}

func (r *Registry) validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return toolerr.Newf(toolerr.InvalidArgument, "invalid arguments: %s", err.Error())
	}

	fe := verrs[0]
	// dive errors are reported as name[idx]
	field := fe.Field()
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}

	switch fe.Tag() {
	case "required":
		return toolerr.InvalidArgf(field, "%s is required", field)
	case "http_url":
		return toolerr.InvalidArgf(field, "%s must be a valid http or https URL: %q", field, fe.Value())
	case "oneof":
		return toolerr.InvalidArgf(field, "unsupported %s %q: must be one of %s",
			field, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "model":
		return toolerr.InvalidArgf(field, "unsupported model %q: must be one of %s",
			fe.Value(), strings.Join(r.Models(), ", "))
	case "gte", "lt":
		return toolerr.InvalidArgf(field, "%s must be in the range [0, %g), got %v", field, sonar.MaxTemperature, fe.Value())
	case "datetime":
		return toolerr.InvalidArgf(field, "%s must be a date in MM/DD/YYYY format: %q", field, fe.Value())
	default:
		return toolerr.InvalidArgf(field, "%s failed on %s validation", field, fe.Tag())
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
