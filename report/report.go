// Package report renders an API response, together with the effective
// request that produced it, into the text returned as the tool result.
//
// The rendered sections always appear in the same order:
// banner, request details, body, usage, citations, sources, notes.
// Optional sections are omitted entirely when they have nothing to show.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/effective-security/sonarmcp/pkg/pricing"
	"github.com/effective-security/sonarmcp/pkg/sonar"
)

const (
	// AcademicBanner is shown for academic searches.
	AcademicBanner = "**ACADEMIC SEARCH MODE ACTIVE**"
	// MaxSources is the number of consulted sources listed.
	MaxSources = 5
	// NoContent replaces the body when the API returned no text.
	NoContent = "(no content returned by the API)"
	// MissingCitation replaces a citation returned without a URL.
	MissingCitation = "(URL unavailable)"
)

// Formatter renders reports. It holds only the read-only price table,
// and is safe for concurrent use.
type Formatter struct {
	prices pricing.Table
}

// New returns a formatter using the price table.
func New(prices pricing.Table) *Formatter {
	if prices == nil {
		prices = pricing.Default
	}
	return &Formatter{prices: prices}
}

// EchoLine is a single line of the request details.
type EchoLine struct {
	Label string
	Value string
}

// Usage summarizes token usage and cost.
type Usage struct {
	Available        bool
	Model            string
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	// EstimatedCost is nil when the model has no price
	EstimatedCost *float64
	ReportedCost  *float64
}

// CostText returns the estimated cost, or "unavailable".
func (u Usage) CostText() string {
	if u.EstimatedCost == nil {
		return "unavailable"
	}
	return formatUSD(*u.EstimatedCost)
}

// String returns the usage line.
func (u Usage) String() string {
	if !u.Available {
		return "**Usage:** unavailable"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Usage:** %d prompt + %d completion = %d tokens | estimated cost: ",
		u.PromptTokens, u.CompletionTokens, u.TotalTokens)
	if u.EstimatedCost == nil {
		fmt.Fprintf(&b, "unavailable (no price for model %q)", u.Model)
	} else {
		b.WriteString(formatUSD(*u.EstimatedCost))
	}
	if u.ReportedCost != nil {
		b.WriteString(" | reported cost: ")
		b.WriteString(formatUSD(*u.ReportedCost))
	}
	return b.String()
}

// Report is the rendered result of a tool call.
// It is not modified after Format returns it.
type Report struct {
	banner    string
	echo      []EchoLine
	body      string
	usage     Usage
	citations []string
	sources   []sonar.SearchResult
	notes     []string
}

// Banner returns the mode banner, or empty string.
func (r *Report) Banner() string { return r.banner }

// Echo returns the request details.
func (r *Report) Echo() []EchoLine { return append([]EchoLine(nil), r.echo...) }

// Body returns the generated text.
func (r *Report) Body() string { return r.body }

// Usage returns the usage summary.
func (r *Report) Usage() Usage { return r.usage }

// Citations returns the citations in API order.
func (r *Report) Citations() []string { return append([]string(nil), r.citations...) }

// Notes returns notes about data missing from the response.
func (r *Report) Notes() []string { return append([]string(nil), r.notes...) }

// Format builds the report. It is a pure function of its inputs.
func (f *Formatter) Format(req *sonar.SearchRequest, resp *sonar.APIResponse) *Report {
	r := &Report{
		banner: banner(req),
		echo:   echo(req),
	}

	if resp.Content != nil {
		r.body = strings.TrimSpace(*resp.Content)
	}
	if r.body == "" {
		r.body = NoContent
		if resp.Content != nil {
			r.notes = append(r.notes, "the API returned empty content")
		}
	}

	r.usage = f.usage(req, resp)

	if len(resp.Citations) > 0 {
		r.citations = append([]string(nil), resp.Citations...)
	}
	if n := min(len(resp.SearchResults), MaxSources); n > 0 {
		r.sources = append([]sonar.SearchResult(nil), resp.SearchResults[:n]...)
	}
	if len(resp.Missing) > 0 {
		r.notes = append(r.notes, "some response data was unavailable: "+strings.Join(resp.Missing, ", "))
	}
	return r
}

func (f *Formatter) usage(req *sonar.SearchRequest, resp *sonar.APIResponse) Usage {
	u := Usage{Model: req.Model}
	if resp.Usage == nil {
		return u
	}
	u.Available = true
	u.PromptTokens = resp.Usage.PromptTokens
	u.CompletionTokens = resp.Usage.CompletionTokens
	u.TotalTokens = resp.Usage.TotalTokens
	if cost, ok := f.prices.Estimate(req.Model, u.PromptTokens, u.CompletionTokens); ok {
		u.EstimatedCost = &cost
	}
	if resp.Usage.ReportedCost != nil {
		v := *resp.Usage.ReportedCost
		u.ReportedCost = &v
	}
	return u
}

func banner(req *sonar.SearchRequest) string {
	if req.Academic {
		return AcademicBanner
	}
	if !req.HasDomainFilter() {
		return ""
	}
	var parts []string
	if len(req.IncludeDomains) > 0 {
		parts = append(parts, "including "+strings.Join(req.IncludeDomains, ", "))
	}
	if len(req.ExcludeDomains) > 0 {
		parts = append(parts, "excluding "+strings.Join(req.ExcludeDomains, ", "))
	}
	return "**DOMAIN FILTER ACTIVE**: " + strings.Join(parts, "; ")
}

func echo(req *sonar.SearchRequest) []EchoLine {
	var lines []EchoLine
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, EchoLine{Label: label, Value: value})
		}
	}

	add("Tool", req.Tool)
	model := req.Model
	if req.RequestedModel != "" && req.RequestedModel != req.Model {
		model += " (requested: " + req.RequestedModel + ")"
	}
	add("Model", model)
	if req.Attachment == nil {
		add("Search Context Size", string(req.ContextSize))
	}
	if req.Academic {
		add("Search Mode", sonar.SearchModeAcademic)
	}
	add("Included Domains", strings.Join(req.IncludeDomains, ", "))
	add("Excluded Domains", strings.Join(req.ExcludeDomains, ", "))
	add("Recency Filter", req.Recency)
	add("Published After", req.AfterDate)
	add("Published Before", req.BeforeDate)
	if req.Attachment != nil {
		add("Attachment", req.Attachment.Describe())
		if req.WebSearch {
			add("Web Search", "enabled")
		}
	}
	add("Temperature", strconv.FormatFloat(req.Temperature, 'f', -1, 64))
	return lines
}

// String renders the report as markdown text.
func (r *Report) String() string {
	var sections []string

	if r.banner != "" {
		sections = append(sections, r.banner)
	}

	if len(r.echo) > 0 {
		var b strings.Builder
		b.WriteString("**Request Details:**")
		for _, l := range r.echo {
			b.WriteString("\n- ")
			b.WriteString(l.Label)
			b.WriteString(": ")
			b.WriteString(l.Value)
		}
		sections = append(sections, b.String(), "---")
	}

	sections = append(sections, r.body, r.usage.String())

	if len(r.citations) > 0 {
		var b strings.Builder
		b.WriteString("**Citations:**")
		for i, c := range r.citations {
			if c == "" {
				c = MissingCitation
			}
			fmt.Fprintf(&b, "\n%d. %s", i+1, c)
		}
		sections = append(sections, b.String())
	}

	if len(r.sources) > 0 {
		var b strings.Builder
		b.WriteString("**Sources consulted:**")
		for _, s := range r.sources {
			b.WriteString("\n- ")
			if sonar.IsAcademicSource(s.URL) {
				b.WriteString("[academic] ")
			}
			title := s.Title
			if title == "" {
				title = "Untitled"
			}
			b.WriteString(title)
			b.WriteString(": ")
			b.WriteString(s.URL)
		}
		sections = append(sections, b.String())
	}

	for _, n := range r.notes {
		sections = append(sections, "_Note: "+n+"._")
	}

	return strings.Join(sections, "\n\n") + "\n"
}

func formatUSD(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 6, 64)
}
