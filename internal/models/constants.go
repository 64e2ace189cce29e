package models

const (
	// NotFoundAnswer is the exact reply the answer prompt asks for when a
	// document has nothing to do with the question.
	NotFoundAnswer = "Not found in this document."

	ListLiteralRegex   = `(?s)\[.*?\]`
	DefaultMaxKeywords = 15
)

var (
	KeywordPromptTemplate = `
You are an NLP assistant.
Extract the top %d relevant semantic keywords from the question below.
Query: "%s"
Respond as a Python list of quoted strings, for example ["keyword one", "keyword two"].
`

	AnswerPromptTemplate = `
You are a document expert. Read the following document and answer the user's question.
Use your reasoning and inference to understand synonyms and implied meanings.

Question: %s
Document:
"""%s"""

Instructions:
- Try to answer based on meaning, not just exact words.
- If the answer is clearly implied or indirectly present, respond with your best interpretation.
- If no relation at all, reply: "` + NotFoundAnswer + `"
`
)
