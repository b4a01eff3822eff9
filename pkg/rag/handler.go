package rag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bradwmorris/worldfair-connect/internal/log"
	"github.com/bradwmorris/worldfair-connect/pkg/convo"
	"github.com/bradwmorris/worldfair-connect/pkg/genai"
	"github.com/bradwmorris/worldfair-connect/pkg/knowledge"
)

// Searcher finds catalog records matching a free-text query.
// *knowledge.SupabaseClient satisfies this.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]knowledge.Record, error)
}

// Generator produces text from a single-shot prompt.
// *genai.Client satisfies this.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, opts genai.Options) (string, error)
}

// Session provides read access to the conversation transcript.
type Session interface {
	Turns() []convo.Turn
}

// ResultFunc delivers the generated answer back to the orchestrator.
// The handler calls it at most once per invocation.
type ResultFunc func(result string) error

// Config tunes the handler. Zero values select the defaults below.
type Config struct {
	Model           string  // generation model (default genai.RAGModel)
	SearchLimit     int     // max records per search (default knowledge.DefaultLimit)
	SeedTurns       int     // leading turns skipped by the reducer (default convo.DefaultSeedTurns)
	KeepTurns       int     // trailing messages kept (default convo.DefaultKeepTurns)
	Temperature     float64 // sampling temperature (default 0.1)
	MaxOutputTokens int     // output cap, the spoken answer is short (default 64)

	// Asset is the static knowledge text folded into every prompt.
	Asset string
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = genai.RAGModel
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = knowledge.DefaultLimit
	}
	if c.SeedTurns <= 0 {
		c.SeedTurns = convo.DefaultSeedTurns
	}
	if c.KeepTurns <= 0 {
		c.KeepTurns = convo.DefaultKeepTurns
	}
	if c.Temperature <= 0 {
		c.Temperature = 0.1
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = 64
	}
	return c
}

// Handler answers query_knowledge_base tool calls. Each invocation is an
// independent request/response exchange; the handler itself holds only
// long-lived read-only collaborators and is safe for concurrent use.
type Handler struct {
	searcher Searcher
	gen      Generator
	cfg      Config
	logger   *slog.Logger
}

// NewHandler creates a handler with injected collaborators.
func NewHandler(searcher Searcher, gen Generator, cfg Config) *Handler {
	return &Handler{
		searcher: searcher,
		gen:      gen,
		cfg:      cfg.withDefaults(),
		logger:   log.With("component", "rag"),
	}
}

// Handle runs one retrieval-augmented answer: search, context reduction,
// prompt assembly, a single generation call, then exactly one delivery.
// Any failure before delivery fails the invocation and nothing is
// delivered; there is no retry or fallback answer.
func (h *Handler) Handle(ctx context.Context, question string, session Session, deliver ResultFunc) error {
	h.logger.Info("querying knowledge base", "question", question)

	records, err := h.searcher.Search(ctx, question, h.cfg.SearchLimit)
	if err != nil {
		return fmt.Errorf("rag: search failed: %w", err)
	}
	excerpt := Excerpt(records)

	messages := convo.Reduce(session.Turns(), h.cfg.SeedTurns, h.cfg.KeepTurns)
	historyJSON, err := convo.TranscriptJSON(messages)
	if err != nil {
		return fmt.Errorf("rag: %w", err)
	}

	prompt := BuildPrompt(h.cfg.Asset, excerpt, historyJSON)

	start := time.Now()
	answer, err := h.gen.Generate(ctx, h.cfg.Model, prompt, genai.Options{
		Temperature:     h.cfg.Temperature,
		MaxOutputTokens: h.cfg.MaxOutputTokens,
	})
	if err != nil {
		return fmt.Errorf("rag: generation failed: %w", err)
	}

	h.logger.Info("knowledge base answer",
		"latency", time.Since(start).Round(time.Millisecond),
		"matches", len(records),
		"answer", answer)

	if err := deliver(answer); err != nil {
		return fmt.Errorf("rag: failed to deliver result: %w", err)
	}
	return nil
}
