package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docsearch/internal/answer"
	"docsearch/internal/auth"
	"docsearch/internal/drive"
	"docsearch/internal/helper"
	"docsearch/internal/metrics"
	"docsearch/internal/models"
	"docsearch/internal/relevance"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyQuery = errors.New("empty query")
	ErrNoKeywords = errors.New("could not extract keywords")
	ErrListing    = errors.New("failed to list drive files")
)

type KeywordExtractor interface {
	Extract(ctx context.Context, query string) ([]string, error)
}

type DocumentStore interface {
	ListRoot(ctx context.Context, token string) ([]models.RemoteFile, error)
	Download(ctx context.Context, token, id string) ([]byte, error)
}

type Decoder interface {
	Supported(name string) bool
	Decode(name string, data []byte) models.Document
}

type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, query, documentText string) (string, error)
}

// RAG runs one question through keyword extraction, drive listing, per-file
// filtering and answer synthesis. Files are processed strictly one at a time.
type RAG struct {
	keywords    KeywordExtractor
	credentials auth.Provider
	store       DocumentStore
	decoder     Decoder
	synthesizer AnswerSynthesizer
}

func NewRAG(keywords KeywordExtractor, credentials auth.Provider, store DocumentStore, decoder Decoder, synthesizer AnswerSynthesizer) *RAG {
	return &RAG{
		keywords:    keywords,
		credentials: credentials,
		store:       store,
		decoder:     decoder,
		synthesizer: synthesizer,
	}
}

// Query answers query from the user's drive, writing progress to rep. The
// returned error is non-nil only when the workflow halted early; per-file
// download, decode and synthesis failures are reported and skipped.
func (r *RAG) Query(ctx context.Context, query string, rep Reporter) (*models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	ctx = WithReporter(ctx, rep)
	result := &models.SearchResult{QueryID: helper.NewQueryID(), Query: query}
	logger := log.With().Str("query_id", result.QueryID).Logger()
	logger.Info().Str("query", query).Msg("Query received")

	rep.Info("Extracting semantic keywords...")
	keywords, err := r.keywords.Extract(ctx, query)
	if err != nil || len(keywords) == 0 {
		if err != nil {
			logger.Error().Err(err).Msg("Keyword extraction failed")
			rep.Error(fmt.Sprintf("Language model error: %v", err))
		}
		rep.Error("Could not extract keywords.")
		metrics.QueriesTotal.WithLabelValues("no_keywords").Inc()
		return result, errors.Join(ErrNoKeywords, err)
	}
	result.Keywords = keywords
	rep.Keywords(keywords)
	logger.Debug().Strs("keywords", keywords).Msg("Keywords extracted")

	token, err := r.credentials.AccessToken(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Authentication failed")
		rep.Error("Authentication failed.")
		metrics.QueriesTotal.WithLabelValues("auth").Inc()
		return result, err
	}

	files, err := r.store.ListRoot(ctx, token)
	if err != nil {
		logger.Error().Err(err).Msg("Listing failed")
		var se *drive.StatusError
		if errors.As(err, &se) {
			rep.Error(fmt.Sprintf("Failed to list drive files: %d", se.StatusCode))
		} else {
			rep.Error(fmt.Sprintf("Failed to list drive files: %v", err))
		}
		metrics.QueriesTotal.WithLabelValues("listing").Inc()
		return result, fmt.Errorf("%w: %w", ErrListing, err)
	}

	matcher := relevance.Compile(keywords)
	for _, file := range files {
		if file.IsFolder() || !r.decoder.Supported(file.Name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Scanned++

		if match, ok := r.process(ctx, logger, query, token, file, matcher, rep); ok {
			result.Matches = append(result.Matches, match)
		}
	}
	result.FoundAny = len(result.Matches) > 0

	if !result.FoundAny {
		rep.Warn("No matching document found.")
		metrics.QueriesTotal.WithLabelValues("not_found").Inc()
	} else {
		metrics.QueriesTotal.WithLabelValues("found").Inc()
	}
	logger.Info().
		Int("scanned", result.Scanned).
		Int("matched", len(result.Matches)).
		Msg("Query finished")
	return result, nil
}

// process downloads, decodes and filters a single file, synthesizing an
// answer when it matches. ok is false when the file was skipped.
func (r *RAG) process(ctx context.Context, logger zerolog.Logger, query, token string, file models.RemoteFile, matcher *relevance.Matcher, rep Reporter) (models.Match, bool) {
	data, err := r.store.Download(ctx, token, file.ID)
	if err != nil {
		logger.Error().Err(err).Str("file", file.Name).Msg("Download failed")
		rep.Error(fmt.Sprintf("Failed to download %s: %v", file.Name, err))
		metrics.DocumentsTotal.WithLabelValues("download_failed").Inc()
		return models.Match{}, false
	}

	doc := r.decoder.Decode(file.Name, data)
	if doc.Failed() {
		logger.Warn().Err(doc.Err).Str("file", file.Name).Msg("Decode failed")
		rep.Warn(fmt.Sprintf("Could not read %s: %v", file.Name, doc.Err))
		metrics.DocumentsTotal.WithLabelValues("decode_failed").Inc()
		return models.Match{}, false
	}

	hit := matcher.Find(doc.Text)
	if hit == "" {
		metrics.DocumentsTotal.WithLabelValues("skipped").Inc()
		return models.Match{}, false
	}
	logger.Debug().Str("file", file.Name).Str("hit", hit).Msg("Document matched")
	metrics.DocumentsTotal.WithLabelValues("matched").Inc()

	match := models.Match{File: file}
	rep.Document(file.Name, doc.Text)

	reply, err := r.synthesizer.Synthesize(ctx, query, doc.Text)
	if err != nil {
		logger.Error().Err(err).Str("file", file.Name).Msg("Answer synthesis failed")
		rep.Error(fmt.Sprintf("Language model error: %v", err))
		match.AnswerErr = err
		return match, true
	}
	if answer.IsNotFound(reply) {
		logger.Debug().Str("file", file.Name).Msg("Matched document does not answer the query")
	}
	match.Answer = reply
	rep.Answer(file.Name, reply)
	return match, true
}
