package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docsearch/internal/llmservice"
	"docsearch/internal/models"
)

var ErrSynthesis = errors.New("answer synthesis failed")

type Synthesizer struct {
	llm llmservice.Client
}

func NewSynthesizer(llm llmservice.Client) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Synthesize asks the model to answer query from documentText. The reply is
// returned verbatim, including the models.NotFoundAnswer sentinel.
func (s *Synthesizer) Synthesize(ctx context.Context, query, documentText string) (string, error) {
	prompt := fmt.Sprintf(models.AnswerPromptTemplate, query, documentText)

	answer, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	return answer, nil
}

// IsNotFound reports whether answer is the "not found" sentinel.
func IsNotFound(answer string) bool {
	return strings.TrimSpace(answer) == models.NotFoundAnswer
}
