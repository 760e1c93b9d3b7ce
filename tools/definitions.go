package tools

// definitions lists the tools in the order they are advertised.
var definitions = []func() (*Definition, error){
	func() (*Definition, error) {
		return NewDefinition[SearchWebArgs](SearchWeb,
			"Web search with citations using the Sonar models.",
			`Perform a web search using Perplexity's Sonar models.

This is the primary tool for searching the internet and getting real-time information.
The answer includes citations and the list of sources consulted.

Available models:
- sonar: fast and cost-effective search
- sonar-pro: enhanced search with better comprehension
- sonar-reasoning: detailed reasoning with search
- sonar-reasoning-pro: advanced reasoning capabilities
- sonar-deep-research: exhaustive multi-step research`)
	},
	func() (*Definition, error) {
		return NewDefinition[SearchWebAdvancedArgs](SearchWebAdvanced,
			"Web search with domain, date, recency and academic filters.",
			`Perform an advanced web search with filtering options.

This tool provides fine-grained control over search parameters:
- domain filtering with allow and deny lists (up to 20 domains)
- academic search mode
- search context size
- recency and publication date filters

Use this for specialized searches requiring specific sources or constraints.`)
	},
	func() (*Definition, error) {
		return NewDefinition[SearchAcademicArgs](SearchAcademic,
			"Search targeting peer-reviewed and scholarly sources.",
			`Perform a search specifically targeting academic and scholarly sources.

This tool focuses on peer-reviewed papers, journal articles and research publications.
It always uses the sonar-reasoning-pro model with a research assistant prompt,
whatever model is requested.

Use for literature reviews, scientific research and evidence-based queries.`)
	},
	func() (*Definition, error) {
		return NewDefinition[AnalyzeImageBase64Args](AnalyzeImageBase64,
			"Analyze a base64 encoded image.",
			`Analyze an image provided as base64 encoded data.

Supports PNG, JPEG, WEBP and GIF formats up to 50MB.
The tool can describe image contents, extract text, answer questions about
visual content and interpret diagrams and charts.`)
	},
	func() (*Definition, error) {
		return NewDefinition[AnalyzeImageURLArgs](AnalyzeImageURL,
			"Analyze an image from a public URL.",
			`Analyze an image hosted online.

The URL must be publicly accessible over http or https.
The tool can describe image contents, extract text, answer questions about
visual content and interpret diagrams and charts.`)
	},
	func() (*Definition, error) {
		return NewDefinition[AnalyzePDFArgs](AnalyzePDF,
			"Analyze a PDF document from a public URL.",
			`Analyze a PDF document from a URL.

The PDF must be accessible via a public URL.
Use it for document summarization, question answering about the content
and key information extraction. Set include_web_search to complement the
document with web sources.`)
	},
	func() (*Definition, error) {
		return NewDefinition[ExplainCapabilitiesArgs](ExplainCapabilities,
			"Describe the available tools, models and options.",
			"Get detailed information about this server's tools, their arguments, the supported models and their prices.")
	},
}
