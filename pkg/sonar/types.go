package sonar

import (
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
)

// Supported models
const (
	ModelSonar             = "sonar"
	ModelSonarPro          = "sonar-pro"
	ModelSonarReasoning    = "sonar-reasoning"
	ModelSonarReasoningPro = "sonar-reasoning-pro"
	ModelSonarDeepResearch = "sonar-deep-research"
)

// Models is the list of models accepted by the API.
var Models = []string{
	ModelSonar,
	ModelSonarPro,
	ModelSonarReasoning,
	ModelSonarReasoningPro,
	ModelSonarDeepResearch,
}

// AcademicModel is the model forced for academic searches.
const AcademicModel = ModelSonarReasoningPro

// AcademicSystemPrompt is the system prompt forced for academic searches.
const AcademicSystemPrompt = "You are a research assistant. Prioritize peer-reviewed papers, " +
	"journal articles, preprints and other scholarly sources. Cite every claim, " +
	"mention the publication year of cited work and state the strength of the evidence."

// DefaultTemperature is used when the caller does not provide one.
const DefaultTemperature = 0.2

// MaxTemperature is the exclusive upper bound accepted by the API.
const MaxTemperature = 2.0

// ContextSize controls how many web sources the API consults per query.
type ContextSize string

const (
	ContextLow    ContextSize = "low"
	ContextMedium ContextSize = "medium"
	ContextHigh   ContextSize = "high"
	ContextAuto   ContextSize = "auto"
)

// SearchModeAcademic is the wire value of the academic search mode.
const SearchModeAcademic = "academic"

// AttachmentKind is the kind of multimodal content.
type AttachmentKind string

const (
	AttachmentImageURL    AttachmentKind = "image-url"
	AttachmentImageBase64 AttachmentKind = "image-base64"
	AttachmentPDFURL      AttachmentKind = "pdf-url"
)

// Attachment is a single piece of multimodal content sent with the query.
type Attachment struct {
	Kind AttachmentKind
	// Payload is the URL, or the base64 data for AttachmentImageBase64
	Payload string
	// MIMEType is set for AttachmentImageBase64
	MIMEType string
}

// URL returns the value sent on the wire, a data URI for base64 images.
func (a *Attachment) URL() string {
	if a.Kind == AttachmentImageBase64 {
		return "data:" + a.MIMEType + ";base64," + a.Payload
	}
	return a.Payload
}

// Describe returns a short description suitable for logs and reports,
// never the base64 payload itself.
func (a *Attachment) Describe() string {
	if a.Kind == AttachmentImageBase64 {
		return string(a.Kind) + " (" + a.MIMEType + ", " + humanize.IBytes(uint64(len(a.Payload)*3/4)) + ")"
	}
	return string(a.Kind) + " " + a.Payload
}

// SearchRequest is the effective request sent to the API.
type SearchRequest struct {
	// Tool is the name of the tool that produced the request
	Tool         string
	Query        string
	SystemPrompt string
	Model        string
	// RequestedModel is the model asked for by the caller, when it was overridden
	RequestedModel string
	ContextSize    ContextSize
	IncludeDomains []string
	ExcludeDomains []string
	// Recency is one of hour, day, week, month, year
	Recency string
	// AfterDate and BeforeDate are in MM/DD/YYYY format
	AfterDate   string
	BeforeDate  string
	Academic    bool
	Temperature float64
	// WebSearch enables web search for document analysis
	WebSearch  bool
	Attachment *Attachment
}

// HasDomainFilter returns true if include or exclude domains are set.
func (r *SearchRequest) HasDomainFilter() bool {
	return len(r.IncludeDomains) > 0 || len(r.ExcludeDomains) > 0
}

// DomainFilter returns the wire form of the domain filter,
// with excluded domains prefixed by '-'.
func (r *SearchRequest) DomainFilter() []string {
	if !r.HasDomainFilter() {
		return nil
	}
	list := slices.Clone(r.IncludeDomains)
	for _, d := range r.ExcludeDomains {
		list = append(list, "-"+d)
	}
	return list
}

// Usage reports the tokens consumed by a call.
type Usage struct {
	PromptTokens      int64
	CompletionTokens  int64
	TotalTokens       int64
	SearchContextSize string
	// ReportedCost is the total cost in USD reported by the API, if any
	ReportedCost *float64
}

// SearchResult is a source consulted by the API.
type SearchResult struct {
	Title string
	URL   string
	Date  string
}

// APIResponse is the decoded API response.
// It is never mutated after decoding.
type APIResponse struct {
	ID    string
	Model string
	// Content is nil when the response carried no generated text
	Content *string
	// Usage is nil when the response carried no token counts
	Usage         *Usage
	Citations     []string
	SearchResults []SearchResult
	// Missing lists the expected fields absent from the response
	Missing []string
}

var academicMarkers = []string{".edu", "scholar", "academic", "journal", "pubmed", "arxiv", "doi.org", "ncbi.nlm.nih.gov"}

// IsAcademicSource returns true if the URL looks like a scholarly source.
func IsAcademicSource(url string) bool {
	u := strings.ToLower(url)
	for _, m := range academicMarkers {
		if strings.Contains(u, m) {
			return true
		}
	}
	return false
}
