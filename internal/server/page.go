package server

import (
	"html/template"
	"io"
	"net/http"

	"docsearch/internal/helper"
	"docsearch/internal/rag"

	"github.com/rs/zerolog/log"
)

var pageTemplate = template.Must(template.New("page").Parse(`
{{define "header"}}<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Drive Semantic Search</title>
<style>
body { font-family: sans-serif; max-width: 50rem; margin: 2rem auto; }
.info { color: #1c4e80; } .warning { color: #8a6d00; } .error { color: #a40000; }
textarea { width: 100%; height: 12rem; }
</style>
</head>
<body>
<h1>Drive Semantic Document Search</h1>
<p>Ask a question about your drive <code>.docx</code> files</p>
<form method="get" action="/">
<input type="text" name="q" size="60" value="{{.}}" placeholder="Ask your question">
<button type="submit">Search</button>
</form>
{{end}}

{{define "entry"}}
{{- if eq .Kind "keywords"}}<p>Semantic Keywords:</p><pre><code>{{.Text}}</code></pre>
{{- else if eq .Kind "document"}}<hr><h3>{{.Name}}</h3><textarea readonly>{{.Text}}</textarea>
{{- else if eq .Kind "answer"}}<div class="answer"><p><strong>Answer:</strong></p>{{.HTML}}</div>
{{- else}}<p class="{{.Kind}}">{{.Text}}</p>
{{- end}}
{{end}}

{{define "footer"}}</body>
</html>
{{end}}
`))

type entryView struct {
	Kind rag.EntryKind
	Name string
	Text string
	HTML template.HTML
}

// pageReporter writes each entry as soon as it is reported so a device
// sign-in code shows up while the query is still blocked on it.
type pageReporter struct {
	w      io.Writer
	render func(string) template.HTML
}

func (p *pageReporter) write(v entryView) {
	if err := pageTemplate.ExecuteTemplate(p.w, "entry", v); err != nil {
		log.Error().Err(err).Msg("Rendering entry")
		return
	}
	p.flush()
}

func (p *pageReporter) flush() {
	if f, ok := p.w.(http.Flusher); ok {
		f.Flush()
	}
}

func (p *pageReporter) Info(msg string)  { p.write(entryView{Kind: rag.EntryInfo, Text: msg}) }
func (p *pageReporter) Warn(msg string)  { p.write(entryView{Kind: rag.EntryWarn, Text: msg}) }
func (p *pageReporter) Error(msg string) { p.write(entryView{Kind: rag.EntryError, Text: msg}) }

func (p *pageReporter) Keywords(keywords []string) {
	p.write(entryView{Kind: rag.EntryKeywords, Text: helper.FormatList(keywords)})
}

func (p *pageReporter) Document(name, text string) {
	p.write(entryView{Kind: rag.EntryDocument, Name: name, Text: text})
}

func (p *pageReporter) Answer(name, answer string) {
	p.write(entryView{Kind: rag.EntryAnswer, Name: name, HTML: p.render(answer)})
}
