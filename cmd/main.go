package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docsearch/internal/answer"
	"docsearch/internal/auth"
	"docsearch/internal/config"
	"docsearch/internal/drive"
	"docsearch/internal/helper"
	"docsearch/internal/keywords"
	"docsearch/internal/llmservice"
	"docsearch/internal/metrics"
	"docsearch/internal/parser"
	"docsearch/internal/rag"
	"docsearch/internal/server"
)

const (
	configFilePath = "./configs/config.yaml"
)

func main() {
	configPath := flag.String("config", configFilePath, "Path to the config file")
	query := flag.String("query", "", "Question to answer from your drive documents")
	serve := flag.Bool("serve", false, "Serve the web UI instead of answering on the terminal")
	addr := flag.String("addr", "", "Listen address for -serve (defaults to server.addr from the config)")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	setLogLevel(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	searcher, err := newRAG(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing search")
	}

	switch {
	case *serve:
		if *addr == "" {
			*addr = cfg.Server.Addr
		}
		runServer(ctx, *addr, searcher)
	case *query != "":
		runQuery(ctx, searcher, *query)
	default:
		runInteractive(ctx, searcher)
	}
}

func setLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// newRAG wires every collaborator of the query workflow from cfg.
func newRAG(ctx context.Context, cfg *config.Config) (*rag.RAG, error) {
	llm, err := llmservice.NewClient(ctx, &cfg.LLM)
	if err != nil {
		return nil, err
	}

	var credentials auth.Provider
	if cfg.Auth.AccessToken != "" {
		credentials = auth.Static(cfg.Auth.AccessToken)
	} else {
		credentials = auth.NewDeviceFlow(cfg.Auth, promptDeviceCode)
	}

	return rag.NewRAG(
		keywords.NewExtractor(llm, cfg.Search.MaxKeywords),
		credentials,
		drive.NewClient(cfg.Graph.BaseURL, cfg.Search.MaxDownloadBytes),
		parser.NewDecoder(cfg.Search.TempDir, cfg.Search.Extensions),
		answer.NewSynthesizer(llm),
	), nil
}

func promptDeviceCode(ctx context.Context, code auth.DeviceCode) {
	rep, ok := rag.ReporterFrom(ctx)
	if !ok {
		return
	}
	rep.Info(fmt.Sprintf("Go to: %s", code.VerificationURI))
	rep.Info(fmt.Sprintf("Enter code: %s to authenticate your drive", code.UserCode))
}

func runQuery(ctx context.Context, searcher *rag.RAG, query string) {
	result, err := searcher.Query(ctx, query, newConsole(os.Stdout))
	if err != nil && !errors.Is(err, rag.ErrEmptyQuery) {
		log.Debug().Err(err).Msg("Query halted")
	}
	if result != nil && zerolog.GlobalLevel() <= zerolog.TraceLevel {
		helper.PrettyPrint(os.Stderr, result)
	}
}

func runInteractive(ctx context.Context, searcher *rag.RAG) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Ask your question: ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		runQuery(ctx, searcher, scanner.Text())
		if ctx.Err() != nil {
			return
		}
	}
}

func runServer(ctx context.Context, addr string, searcher *rag.RAG) {
	metrics.Register()

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewServer(searcher).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error shutting down server")
		}
	}()

	log.Info().Str("addr", addr).Msg("Serving web UI")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Error serving web UI")
	}
}
