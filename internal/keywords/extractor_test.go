package keywords

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func TestExtract_ParsesFirstListLiteral(t *testing.T) {
	llm := &fakeLLM{response: "Here you go:\n```python\n[\"vacation\", \"leave\", \"PTO\"]\n```\nAlso [\"ignored\"]"}
	e := NewExtractor(llm, 15)

	got, err := e.Extract(context.Background(), "What is the vacation policy?")
	require.NoError(t, err)
	assert.Equal(t, []string{"vacation", "leave", "PTO"}, got)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], `Query: "What is the vacation policy?"`)
	assert.Contains(t, llm.prompts[0], "top 15")
}

func TestExtract_NoBrackets(t *testing.T) {
	e := NewExtractor(&fakeLLM{response: "vacation, leave, PTO"}, 15)

	got, err := e.Extract(context.Background(), "q")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtract_RejectsCode(t *testing.T) {
	e := NewExtractor(&fakeLLM{response: `[__import__("os").getcwd()]`}, 15)

	got, err := e.Extract(context.Background(), "q")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.ErrorContains(t, err, "invalid list literal")
}

func TestExtract_ModelFailure(t *testing.T) {
	e := NewExtractor(&fakeLLM{err: errors.New("429 quota")}, 15)

	got, err := e.Extract(context.Background(), "q")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.ErrorContains(t, err, "429 quota")
}

func TestExtract_TruncatesAndDropsBlanks(t *testing.T) {
	e := NewExtractor(&fakeLLM{response: `[" a ", "", "b", "c", "d"]`}, 3)

	got, err := e.Extract(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestExtract_EmptyList(t *testing.T) {
	e := NewExtractor(&fakeLLM{response: `[]`}, 15)

	_, err := e.Extract(context.Background(), "q")
	assert.ErrorIs(t, err, ErrExtraction)
}
