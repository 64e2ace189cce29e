package server

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"time"

	"docsearch/internal/models"
	"docsearch/internal/rag"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Searcher runs one question and streams its progress to rep.
type Searcher interface {
	Query(ctx context.Context, query string, rep rag.Reporter) (*models.SearchResult, error)
}

type Server struct {
	searcher Searcher
	markdown goldmark.Markdown
}

func NewServer(searcher Searcher) *Server {
	return &Server{
		searcher: searcher,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
			),
		),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// handleIndex renders the question form and, when q is set, streams the
// query log below it as entries arrive.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.ExecuteTemplate(w, "header", query); err != nil {
		log.Error().Err(err).Msg("Rendering page header")
		return
	}

	if query != "" {
		rep := &pageReporter{w: w, render: s.renderMarkdown}
		rep.flush()
		if _, err := s.searcher.Query(r.Context(), query, rep); err != nil {
			log.Debug().Err(err).Msg("Query halted")
		}
	}

	if err := pageTemplate.ExecuteTemplate(w, "footer", nil); err != nil {
		log.Error().Err(err).Msg("Rendering page footer")
	}
}

func (s *Server) renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
