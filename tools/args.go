package tools

// Tool names
const (
	SearchWeb           = "search_web"
	SearchWebAdvanced   = "search_web_advanced"
	SearchAcademic      = "search_academic"
	AnalyzeImageBase64  = "analyze_image_base64"
	AnalyzeImageURL     = "analyze_image_url"
	AnalyzePDF          = "analyze_pdf"
	ExplainCapabilities = "explain_capabilities"
)

// SearchWebArgs are the arguments of search_web.
type SearchWebArgs struct {
	Query        string   `json:"query" jsonschema:"description=The search query or question,example=latest developments in fusion energy" validate:"required"`
	Model        string   `json:"model,omitempty" jsonschema:"description=Model to use: sonar or sonar-pro or sonar-reasoning or sonar-reasoning-pro or sonar-deep-research,default=sonar" validate:"omitempty,model"`
	SystemPrompt string   `json:"system_prompt,omitempty" jsonschema:"description=Optional system prompt to guide the response"`
	ContextSize  string   `json:"search_context_size,omitempty" jsonschema:"description=Amount of web context retrieved for the answer,enum=low,enum=medium,enum=high,enum=auto,default=auto" validate:"omitempty,oneof=low medium high auto"`
	Recency      string   `json:"search_recency,omitempty" jsonschema:"description=Only use sources published within this period,enum=hour,enum=day,enum=week,enum=month,enum=year" validate:"omitempty,oneof=hour day week month year"`
	Temperature  *float64 `json:"temperature,omitempty" jsonschema:"description=Sampling temperature in the range [0 2),default=0.2" validate:"omitempty,gte=0,lt=2"`
}

// ToolName returns the tool name.
func (SearchWebArgs) ToolName() string { return SearchWeb }

// SearchWebAdvancedArgs are the arguments of search_web_advanced.
type SearchWebAdvancedArgs struct {
	Query          string   `json:"query" jsonschema:"description=The search query or question" validate:"required"`
	Model          string   `json:"model,omitempty" jsonschema:"description=Model to use,default=sonar" validate:"omitempty,model"`
	SystemPrompt   string   `json:"system_prompt,omitempty" jsonschema:"description=Optional system prompt to guide the response"`
	SearchMode     string   `json:"search_mode,omitempty" jsonschema:"description=Search mode: academic for scholarly sources or empty for general web,enum=academic" validate:"omitempty,oneof=academic"`
	ContextSize    string   `json:"search_context_size,omitempty" jsonschema:"description=Context size: low or medium or high affects cost and comprehensiveness,enum=low,enum=medium,enum=high,enum=auto,default=medium" validate:"omitempty,oneof=low medium high auto"`
	IncludeDomains []string `json:"include_domains,omitempty" jsonschema:"description=Only use sources from these domains" validate:"omitempty,dive,required"`
	ExcludeDomains []string `json:"exclude_domains,omitempty" jsonschema:"description=Never use sources from these domains" validate:"omitempty,dive,required"`
	DomainFilter   []string `json:"domain_filter,omitempty" jsonschema:"description=Domains to include or exclude: prefix with - to exclude" validate:"omitempty,dive,required"`
	Recency        string   `json:"search_recency,omitempty" jsonschema:"description=Only use sources published within this period,enum=hour,enum=day,enum=week,enum=month,enum=year" validate:"omitempty,oneof=hour day week month year"`
	AfterDate      string   `json:"search_after_date,omitempty" jsonschema:"description=Only use sources published after this date (MM/DD/YYYY),example=01/31/2025" validate:"omitempty,datetime=01/02/2006"`
	BeforeDate     string   `json:"search_before_date,omitempty" jsonschema:"description=Only use sources published before this date (MM/DD/YYYY)" validate:"omitempty,datetime=01/02/2006"`
	Temperature    *float64 `json:"temperature,omitempty" jsonschema:"description=Sampling temperature in the range [0 2),default=0.2" validate:"omitempty,gte=0,lt=2"`
}

// ToolName returns the tool name.
func (SearchWebAdvancedArgs) ToolName() string { return SearchWebAdvanced }

// SearchAcademicArgs are the arguments of search_academic.
type SearchAcademicArgs struct {
	Query string `json:"query" jsonschema:"description=Academic search query" validate:"required"`
	// Model is accepted for compatibility and always overridden
	Model       string   `json:"model,omitempty" jsonschema:"description=Ignored: academic searches always use sonar-reasoning-pro" validate:"omitempty,model"`
	ContextSize string   `json:"search_context_size,omitempty" jsonschema:"description=Context size: low or medium or high,enum=low,enum=medium,enum=high,enum=auto,default=high" validate:"omitempty,oneof=low medium high auto"`
	Recency     string   `json:"search_recency,omitempty" jsonschema:"description=Only use sources published within this period,enum=hour,enum=day,enum=week,enum=month,enum=year" validate:"omitempty,oneof=hour day week month year"`
	AfterDate   string   `json:"after_date,omitempty" jsonschema:"description=Only use research published after this date (MM/DD/YYYY)" validate:"omitempty,datetime=01/02/2006"`
	Temperature *float64 `json:"temperature,omitempty" jsonschema:"description=Sampling temperature in the range [0 2),default=0.2" validate:"omitempty,gte=0,lt=2"`
}

// ToolName returns the tool name.
func (SearchAcademicArgs) ToolName() string { return SearchAcademic }

// AnalyzeImageBase64Args are the arguments of analyze_image_base64.
type AnalyzeImageBase64Args struct {
	ImageBase64 string   `json:"image_base64" jsonschema:"description=Base64 encoded image data: a data URI prefix is accepted" validate:"required"`
	ImageType   string   `json:"image_type,omitempty" jsonschema:"description=Image MIME type,enum=image/png,enum=image/jpeg,enum=image/webp,enum=image/gif,default=image/png" validate:"omitempty,oneof=image/png image/jpeg image/webp image/gif"`
	Question    string   `json:"question,omitempty" jsonschema:"description=Question about the image"`
	Model       string   `json:"model,omitempty" jsonschema:"description=Model to use: sonar-pro recommended for images,default=sonar-pro" validate:"omitempty,model"`
	Temperature *float64 `json:"temperature,omitempty" jsonschema:"description=Sampling temperature in the range [0 2),default=0.2" validate:"omitempty,gte=0,lt=2"`
}

// ToolName returns the tool name.
func (AnalyzeImageBase64Args) ToolName() string { return AnalyzeImageBase64 }

// AnalyzeImageURLArgs are the arguments of analyze_image_url.
type AnalyzeImageURLArgs struct {
	ImageURL    string   `json:"image_url" jsonschema:"description=Public http or https URL of the image,format=uri" validate:"required,http_url"`
	Question    string   `json:"question,omitempty" jsonschema:"description=Question about the image"`
	Model       string   `json:"model,omitempty" jsonschema:"description=Model to use: sonar-pro recommended for images,default=sonar-pro" validate:"omitempty,model"`
	Temperature *float64 `json:"temperature,omitempty" jsonschema:"description=Sampling temperature in the range [0 2),default=0.2" validate:"omitempty,gte=0,lt=2"`
}

// ToolName returns the tool name.
func (AnalyzeImageURLArgs) ToolName() string { return AnalyzeImageURL }

// AnalyzePDFArgs are the arguments of analyze_pdf.
type AnalyzePDFArgs struct {
	PDFURL           string   `json:"pdf_url" jsonschema:"description=Public http or https URL of the PDF document,format=uri" validate:"required,http_url"`
	Question         string   `json:"question,omitempty" jsonschema:"description=Question about the PDF content"`
	Model            string   `json:"model,omitempty" jsonschema:"description=Model to use: sonar-pro recommended for documents,default=sonar-pro" validate:"omitempty,model"`
	IncludeWebSearch bool     `json:"include_web_search,omitempty" jsonschema:"description=Include web search for additional context,default=false"`
	Temperature      *float64 `json:"temperature,omitempty" jsonschema:"description=Sampling temperature in the range [0 2),default=0.2" validate:"omitempty,gte=0,lt=2"`
}

// ToolName returns the tool name.
func (AnalyzePDFArgs) ToolName() string { return AnalyzePDF }

// ExplainCapabilitiesArgs are the arguments of explain_capabilities.
type ExplainCapabilitiesArgs struct {
	Format string `json:"format,omitempty" jsonschema:"description=Output format,enum=text,enum=json,enum=yaml,enum=toml,default=text" validate:"omitempty,oneof=text json yaml toml"`
}

// ToolName returns the tool name.
func (ExplainCapabilitiesArgs) ToolName() string { return ExplainCapabilities }
