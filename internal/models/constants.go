package models

const (
	// Transcript artifacts removed by the cleaner.
	TimestampRegex  = `\[\d{1,2}:\d{2}(?::\d{2})?\]`
	AnnotationRegex = `(?i)[\[(](?:inaudible|music|applause|laughs|laughter|crosstalk|silence|noise)[\])]`
	FillerRegex     = `(?i)\b(?:uh-huh|mm-hmm|um+|uh+|erm|hmm+)\b[,.]?`
	SpaceRegex      = `[ \t]+`
	BlankLineRegex  = `\n{3,}`
)

const SystemPrompt = `You are a helpful assistant. Use the provided context to answer the query. If the context does not contain the answer, say so.`

const RAGPromptTemplate = `Context:
%s
Query: %s`
