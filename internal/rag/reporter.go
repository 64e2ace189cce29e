package rag

import (
	"context"
	"sync"
)

// Reporter is the user-facing log of one query.
type Reporter interface {
	Info(msg string)
	Keywords(keywords []string)
	Document(name, text string)
	Answer(name, answer string)
	Warn(msg string)
	Error(msg string)
}

type EntryKind string

const (
	EntryInfo     EntryKind = "info"
	EntryKeywords EntryKind = "keywords"
	EntryDocument EntryKind = "document"
	EntryAnswer   EntryKind = "answer"
	EntryWarn     EntryKind = "warning"
	EntryError    EntryKind = "error"
)

type Entry struct {
	Kind     EntryKind
	Name     string
	Text     string
	Keywords []string
}

// Recorder keeps every entry in order so it can be rendered later.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *Recorder) Info(msg string) { r.add(Entry{Kind: EntryInfo, Text: msg}) }
func (r *Recorder) Warn(msg string) { r.add(Entry{Kind: EntryWarn, Text: msg}) }
func (r *Recorder) Error(msg string) {
	r.add(Entry{Kind: EntryError, Text: msg})
}

func (r *Recorder) Keywords(keywords []string) {
	r.add(Entry{Kind: EntryKeywords, Keywords: append([]string(nil), keywords...)})
}

func (r *Recorder) Document(name, text string) {
	r.add(Entry{Kind: EntryDocument, Name: name, Text: text})
}

func (r *Recorder) Answer(name, answer string) {
	r.add(Entry{Kind: EntryAnswer, Name: name, Text: answer})
}

func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Kinds returns the kind of every entry, in order.
func (r *Recorder) Kinds() []EntryKind {
	entries := r.Entries()
	kinds := make([]EntryKind, len(entries))
	for i, e := range entries {
		kinds[i] = e.Kind
	}
	return kinds
}

type reporterKey struct{}

// WithReporter attaches rep to ctx so collaborators that need to talk to the
// user mid-query (the device sign-in prompt) can reach it.
func WithReporter(ctx context.Context, rep Reporter) context.Context {
	return context.WithValue(ctx, reporterKey{}, rep)
}

// ReporterFrom returns the Reporter attached to ctx, if any.
func ReporterFrom(ctx context.Context) (Reporter, bool) {
	rep, ok := ctx.Value(reporterKey{}).(Reporter)
	return rep, ok
}
