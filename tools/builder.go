package tools

import (
	"encoding/base64"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/effective-security/sonarmcp/pkg/sonar"
	"github.com/effective-security/sonarmcp/pkg/toolerr"
	"github.com/go-playground/validator/v10"
)

const (
	// MaxDomains is the maximum number of domains in a domain filter.
	MaxDomains = 20
	// MaxImageSize is the maximum decoded size of a base64 image.
	MaxImageSize = 50 << 20

	// DefaultImageQuestion is used when no question is asked about an image.
	DefaultImageQuestion = "Describe this image in detail."
	// DefaultDocumentQuestion is used when no question is asked about a document.
	DefaultDocumentQuestion = "Summarize this document."

	// DefaultImageType is the MIME type assumed for base64 images.
	DefaultImageType = "image/png"

	dateLayout = "01/02/2006"
)

var imageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// Defaults are the process-wide defaults applied by the builder.
type Defaults struct {
	// Model is the default model for search_web and search_web_advanced
	Model string
	// ContextSize is the default context size for search_web
	ContextSize sonar.ContextSize
}

// Builder turns validated argument records into API requests.
// It does no I/O and is safe for concurrent use.
type Builder struct {
	defaults Defaults
	hosts    *validator.Validate
}

// NewBuilder returns a builder with the defaults.
func NewBuilder(defaults Defaults) *Builder {
	if defaults.Model == "" {
		defaults.Model = sonar.ModelSonar
	}
	if defaults.ContextSize == "" {
		defaults.ContextSize = sonar.ContextAuto
	}
	return &Builder{
		defaults: defaults,
		hosts:    validator.New(),
	}
}

// Defaults returns the builder defaults.
func (b *Builder) Defaults() Defaults {
	return b.defaults
}

// Build returns the request for the arguments.
func (b *Builder) Build(args Args) (*sonar.SearchRequest, error) {
	var (
		req *sonar.SearchRequest
		err error
	)
	switch a := args.(type) {
	case *SearchWebArgs:
		req, err = b.searchWeb(a)
	case *SearchWebAdvancedArgs:
		req, err = b.searchWebAdvanced(a)
	case *SearchAcademicArgs:
		req, err = b.searchAcademic(a)
	case *AnalyzeImageBase64Args:
		req, err = b.analyzeImageBase64(a)
	case *AnalyzeImageURLArgs:
		req, err = b.analyzeImageURL(a)
	case *AnalyzePDFArgs:
		req, err = b.analyzePDF(a)
	default:
		return nil, toolerr.InvalidArgf("name", "tool %s does not call the API", args.ToolName())
	}
	if err != nil {
		return nil, err
	}

	req.Tool = args.ToolName()
	if req.Academic {
		if req.Model != "" && req.Model != sonar.AcademicModel {
			req.RequestedModel = req.Model
		}
		req.Model = sonar.AcademicModel
		req.SystemPrompt = sonar.AcademicSystemPrompt
	}
	return req, nil
}

func (b *Builder) searchWeb(a *SearchWebArgs) (*sonar.SearchRequest, error) {
	query, err := queryText(a.Query)
	if err != nil {
		return nil, err
	}
	temp, err := temperature(a.Temperature)
	if err != nil {
		return nil, err
	}
	return &sonar.SearchRequest{
		Query:        query,
		SystemPrompt: strings.TrimSpace(a.SystemPrompt),
		Model:        orDefault(a.Model, b.defaults.Model),
		ContextSize:  sonar.ContextSize(orDefault(a.ContextSize, string(b.defaults.ContextSize))),
		Recency:      a.Recency,
		Temperature:  temp,
	}, nil
}

func (b *Builder) searchWebAdvanced(a *SearchWebAdvancedArgs) (*sonar.SearchRequest, error) {
	query, err := queryText(a.Query)
	if err != nil {
		return nil, err
	}
	temp, err := temperature(a.Temperature)
	if err != nil {
		return nil, err
	}
	include, exclude, err := b.domains(a.IncludeDomains, a.ExcludeDomains, a.DomainFilter)
	if err != nil {
		return nil, err
	}
	if err = checkDates("search_after_date", a.AfterDate, a.BeforeDate); err != nil {
		return nil, err
	}
	academic := a.SearchMode == sonar.SearchModeAcademic
	model := a.Model
	if !academic {
		model = orDefault(model, b.defaults.Model)
	}
	return &sonar.SearchRequest{
		Query:          query,
		SystemPrompt:   strings.TrimSpace(a.SystemPrompt),
		Model:          model,
		ContextSize:    sonar.ContextSize(orDefault(a.ContextSize, string(sonar.ContextMedium))),
		IncludeDomains: include,
		ExcludeDomains: exclude,
		Recency:        a.Recency,
		AfterDate:      a.AfterDate,
		BeforeDate:     a.BeforeDate,
		Academic:       academic,
		Temperature:    temp,
	}, nil
}

func (b *Builder) searchAcademic(a *SearchAcademicArgs) (*sonar.SearchRequest, error) {
	query, err := queryText(a.Query)
	if err != nil {
		return nil, err
	}
	temp, err := temperature(a.Temperature)
	if err != nil {
		return nil, err
	}
	if err = checkDates("after_date", a.AfterDate, ""); err != nil {
		return nil, err
	}
	return &sonar.SearchRequest{
		Query:       query,
		Model:       a.Model,
		ContextSize: sonar.ContextSize(orDefault(a.ContextSize, string(sonar.ContextHigh))),
		Recency:     a.Recency,
		AfterDate:   a.AfterDate,
		Academic:    true,
		Temperature: temp,
	}, nil
}

func (b *Builder) analyzeImageBase64(a *AnalyzeImageBase64Args) (*sonar.SearchRequest, error) {
	temp, err := temperature(a.Temperature)
	if err != nil {
		return nil, err
	}

	data := a.ImageBase64
	mime := a.ImageType
	if rest, ok := strings.CutPrefix(data, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return nil, toolerr.InvalidArgf("image_base64", "image_base64 has a malformed data URI prefix")
		}
		if mime == "" {
			mime = strings.TrimSuffix(meta, ";base64")
		}
		data = payload
	}
	if mime == "" {
		mime = DefaultImageType
	}
	if !slices.Contains(imageTypes, mime) {
		return nil, toolerr.InvalidArgf("image_type", "unsupported image_type %q: must be one of %s",
			mime, strings.Join(imageTypes, ", "))
	}

	data = strings.Join(strings.Fields(data), "")
	if data == "" {
		return nil, toolerr.InvalidArgf("image_base64", "image_base64 is required")
	}
	if base64.StdEncoding.DecodedLen(len(data)) > MaxImageSize+2 {
		return nil, toolerr.InvalidArgf("image_base64", "image exceeds the maximum size of 50 MiB")
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, toolerr.InvalidArgf("image_base64", "image_base64 is not valid base64: %s", err.Error())
	}
	if len(decoded) > MaxImageSize {
		return nil, toolerr.InvalidArgf("image_base64", "image exceeds the maximum size of 50 MiB")
	}

	return &sonar.SearchRequest{
		Query:       orDefault(strings.TrimSpace(a.Question), DefaultImageQuestion),
		Model:       orDefault(a.Model, sonar.ModelSonarPro),
		Temperature: temp,
		Attachment: &sonar.Attachment{
			Kind:     sonar.AttachmentImageBase64,
			Payload:  data,
			MIMEType: mime,
		},
	}, nil
}

func (b *Builder) analyzeImageURL(a *AnalyzeImageURLArgs) (*sonar.SearchRequest, error) {
	temp, err := temperature(a.Temperature)
	if err != nil {
		return nil, err
	}
	return &sonar.SearchRequest{
		Query:       orDefault(strings.TrimSpace(a.Question), DefaultImageQuestion),
		Model:       orDefault(a.Model, sonar.ModelSonarPro),
		Temperature: temp,
		Attachment: &sonar.Attachment{
			Kind:    sonar.AttachmentImageURL,
			Payload: a.ImageURL,
		},
	}, nil
}

func (b *Builder) analyzePDF(a *AnalyzePDFArgs) (*sonar.SearchRequest, error) {
	temp, err := temperature(a.Temperature)
	if err != nil {
		return nil, err
	}
	return &sonar.SearchRequest{
		Query:       orDefault(strings.TrimSpace(a.Question), DefaultDocumentQuestion),
		Model:       orDefault(a.Model, sonar.ModelSonarPro),
		Temperature: temp,
		WebSearch:   a.IncludeWebSearch,
		Attachment: &sonar.Attachment{
			Kind:    sonar.AttachmentPDFURL,
			Payload: a.PDFURL,
		},
	}, nil
}

// domains merges the explicit lists with the mixed filter list,
// returning normalized and de-duplicated include and exclude lists.
func (b *Builder) domains(include, exclude, filter []string) ([]string, []string, error) {
	var inc, exc []string
	add := func(list *[]string, field, raw string) error {
		d := NormalizeDomain(raw)
		if err := b.hosts.Var(d, "required,fqdn"); err != nil {
			return toolerr.InvalidArgf(field, "invalid domain %q", raw)
		}
		if !slices.Contains(*list, d) {
			*list = append(*list, d)
		}
		return nil
	}

	for _, d := range include {
		if err := add(&inc, "include_domains", d); err != nil {
			return nil, nil, err
		}
	}
	for _, d := range exclude {
		if err := add(&exc, "exclude_domains", d); err != nil {
			return nil, nil, err
		}
	}
	for _, d := range filter {
		var err error
		if rest, ok := strings.CutPrefix(strings.TrimSpace(d), "-"); ok {
			err = add(&exc, "domain_filter", rest)
		} else {
			err = add(&inc, "domain_filter", d)
		}
		if err != nil {
			return nil, nil, err
		}
	}

	for _, d := range inc {
		if slices.Contains(exc, d) {
			return nil, nil, toolerr.InvalidArgf("include_domains", "domain %q is both included and excluded", d)
		}
	}
	if n := len(inc) + len(exc); n > MaxDomains {
		return nil, nil, toolerr.InvalidArgf("domain_filter", "too many domains: %d, at most %d are allowed", n, MaxDomains)
	}
	return inc, exc, nil
}

// NormalizeDomain lowercases the domain and strips the scheme, path and www. prefix.
func NormalizeDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	if _, rest, ok := strings.Cut(d, "://"); ok {
		d = rest
	}
	d, _, _ = strings.Cut(d, "/")
	d = strings.TrimPrefix(d, "www.")
	return strings.TrimSuffix(d, ".")
}

func checkDates(field, after, before string) error {
	var a, b time.Time
	var err error
	if after != "" {
		if a, err = time.Parse(dateLayout, after); err != nil {
			return toolerr.InvalidArgf(field, "%s must be a date in MM/DD/YYYY format: %q", field, after)
		}
	}
	if before != "" {
		if b, err = time.Parse(dateLayout, before); err != nil {
			return toolerr.InvalidArgf("search_before_date", "search_before_date must be a date in MM/DD/YYYY format: %q", before)
		}
	}
	if !a.IsZero() && !b.IsZero() && a.After(b) {
		return toolerr.InvalidArgf(field, "%s %s is later than search_before_date %s", field, after, before)
	}
	return nil
}

func queryText(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", toolerr.InvalidArgf("query", "query is required")
	}
	return q, nil
}

func temperature(t *float64) (float64, error) {
	if t == nil {
		return sonar.DefaultTemperature, nil
	}
	v := *t
	if math.IsNaN(v) || v < 0 || v >= sonar.MaxTemperature {
		return 0, toolerr.InvalidArgf("temperature", "temperature must be in the range [0, %g), got %v", sonar.MaxTemperature, v)
	}
	return v, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
