package keywords

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"docsearch/internal/llmservice"
	"docsearch/internal/models"

	"github.com/rs/zerolog/log"
)

var ErrExtraction = errors.New("keyword extraction failed")

var listLiteralRe = regexp.MustCompile(models.ListLiteralRegex)

// Extractor asks a language model for the semantic keywords of a question.
type Extractor struct {
	llm         llmservice.Client
	maxKeywords int
}

func NewExtractor(llm llmservice.Client, maxKeywords int) *Extractor {
	if maxKeywords <= 0 {
		maxKeywords = models.DefaultMaxKeywords
	}
	return &Extractor{llm: llm, maxKeywords: maxKeywords}
}

// Extract returns at most maxKeywords keywords for query. Any failure yields
// a nil slice and an error wrapping ErrExtraction; the call is never retried.
func (e *Extractor) Extract(ctx context.Context, query string) ([]string, error) {
	prompt := fmt.Sprintf(models.KeywordPromptTemplate, e.maxKeywords, query)

	response, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	keywords, err := e.parseResponse(response)
	if err != nil {
		log.Debug().Str("response", response).Msg("Unusable keyword response")
		return nil, err
	}
	return keywords, nil
}

func (e *Extractor) parseResponse(response string) ([]string, error) {
	literal := listLiteralRe.FindString(response)
	if literal == "" {
		return nil, fmt.Errorf("%w: no list literal in model response", ErrExtraction)
	}

	items, err := ParseList(literal)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	keywords := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		keywords = append(keywords, item)
		if len(keywords) == e.maxKeywords {
			break
		}
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: model returned no keywords", ErrExtraction)
	}
	return keywords, nil
}
