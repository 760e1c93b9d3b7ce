package sonar

// Payload is the JSON body of a chat completions request.
type Payload struct {
	Model                  string            `json:"model"`
	Messages               []Message         `json:"messages"`
	Temperature            float64           `json:"temperature"`
	SearchMode             string            `json:"search_mode,omitempty"`
	SearchDomainFilter     []string          `json:"search_domain_filter,omitempty"`
	SearchRecencyFilter    string            `json:"search_recency_filter,omitempty"`
	SearchAfterDateFilter  string            `json:"search_after_date_filter,omitempty"`
	SearchBeforeDateFilter string            `json:"search_before_date_filter,omitempty"`
	WebSearchOptions       *WebSearchOptions `json:"web_search_options,omitempty"`
}

// WebSearchOptions controls the search performed by the API.
type WebSearchOptions struct {
	SearchContextSize string `json:"search_context_size,omitempty"`
	SearchType        string `json:"search_type,omitempty"`
}

// Message is a chat message. Content is either a string,
// or a list of ContentPart for multimodal requests.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is a part of multimodal content.
type ContentPart struct {
	Type     string  `json:"type"`
	Text     string  `json:"text,omitempty"`
	ImageURL *URLRef `json:"image_url,omitempty"`
	FileURL  *URLRef `json:"file_url,omitempty"`
}

// URLRef references remote or inline content.
type URLRef struct {
	URL string `json:"url"`
}

// NewPayload returns the wire form of the request.
func NewPayload(r *SearchRequest) *Payload {
	p := &Payload{
		Model:                  r.Model,
		Temperature:            r.Temperature,
		SearchDomainFilter:     r.DomainFilter(),
		SearchRecencyFilter:    r.Recency,
		SearchAfterDateFilter:  r.AfterDate,
		SearchBeforeDateFilter: r.BeforeDate,
	}

	if r.SystemPrompt != "" {
		p.Messages = append(p.Messages, Message{Role: "system", Content: r.SystemPrompt})
	}
	p.Messages = append(p.Messages, Message{Role: "user", Content: userContent(r)})

	if r.Academic {
		p.SearchMode = SearchModeAcademic
	}

	var opts WebSearchOptions
	if r.ContextSize != "" && r.ContextSize != ContextAuto {
		opts.SearchContextSize = string(r.ContextSize)
	}
	if r.WebSearch {
		opts.SearchType = "pro"
	}
	if opts != (WebSearchOptions{}) {
		p.WebSearchOptions = &opts
	}
	return p
}

func userContent(r *SearchRequest) any {
	if r.Attachment == nil {
		return r.Query
	}

	parts := []ContentPart{
		{Type: "text", Text: r.Query},
	}
	ref := &URLRef{URL: r.Attachment.URL()}
	switch r.Attachment.Kind {
	case AttachmentPDFURL:
		parts = append(parts, ContentPart{Type: "file_url", FileURL: ref})
	default:
		parts = append(parts, ContentPart{Type: "image_url", ImageURL: ref})
	}
	return parts
}
