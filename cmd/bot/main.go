// Worldfair Connect voice concierge.
// Answers questions about the talk catalog over a live voice conversation,
// using retrieval-augmented generation for knowledge-base lookups.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/bradwmorris/worldfair-connect/internal/config"
	"github.com/bradwmorris/worldfair-connect/internal/log"
	"github.com/bradwmorris/worldfair-connect/pkg/convo"
	"github.com/bradwmorris/worldfair-connect/pkg/genai"
	"github.com/bradwmorris/worldfair-connect/pkg/knowledge"
	"github.com/bradwmorris/worldfair-connect/pkg/rag"
	"github.com/bradwmorris/worldfair-connect/pkg/voice"
	_ "github.com/bradwmorris/worldfair-connect/pkg/voice/bundled"
	"github.com/bradwmorris/worldfair-connect/pkg/web"
)

// systemPrompt steers the live conversation. Responses are spoken aloud.
const systemPrompt = `You are a helpful assistant who converses with a user and answers questions.

You have access to the tool, query_knowledge_base, that allows you to query the knowledge base for the answer to the user's question.

Your response will be turned into speech so use only simple words and punctuation.`

func main() {
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	provider := flag.String("provider", string(voice.ProviderGemini), "Voice provider: gemini, mock")
	model := flag.String("model", genai.VoiceModel, "Conversation model")
	voiceName := flag.String("voice", "", "Synthesis voice name")
	assetPath := flag.String("asset", knowledge.DefaultAssetPath, "Static knowledge file")
	dashPort := flag.String("dashboard-port", "8090", "Dashboard HTTP port")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	asset, err := knowledge.LoadAsset(*assetPath)
	if err != nil {
		log.Error("startup failed", log.Err(err))
		os.Exit(1)
	}

	catalog := knowledge.NewSupabase(config.SupabaseURL(), config.SupabaseKey())
	gen := genai.NewClient(config.GoogleAPIKey())
	handler := rag.NewHandler(catalog, gen, rag.Config{Asset: asset})

	cfg := voice.DefaultConfig().
		WithProvider(voice.Provider(*provider)).
		WithModel(*model).
		WithSystemPrompt(systemPrompt).
		WithDebug(*debug)
	if *voiceName != "" {
		cfg = cfg.WithVoice(*voiceName)
	}
	if cfg.Provider == voice.ProviderGemini {
		cfg.GoogleAPIKey = config.GoogleAPIKey()
	}

	pipeline, err := voice.New(cfg)
	if err != nil {
		log.Error("pipeline setup failed", log.Err(err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	history := convo.NewHistory(systemPrompt, cfg.Greeting)
	dashboard := web.NewServer(*dashPort, uuid.NewString())
	sinks := newSinkSet()

	pipeline.RegisterTool(voice.Tool{
		Name:        "query_knowledge_base",
		Description: "Query the knowledge base for the answer to the question.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{
					"type":        "string",
					"description": "The question to query the knowledge base with.",
				},
			},
		},
	})

	callbacks := voice.Callbacks{
		OnTranscript: func(text string, isFinal bool) {
			if isFinal {
				history.AddUser(text)
				dashboard.RecordTranscript(text)
			}
		},
		OnResponse: func(text string, isFinal bool) {
			if isFinal {
				history.AddAssistant(text)
				dashboard.RecordResponse(text)
			}
		},
		OnAudioOut: func(pcm16 []byte) {
			dashboard.SetSpeaking(true)
		},
		OnSpeechStart: func() {
			dashboard.SetSpeaking(false)
		},
		OnToolCall: func(call voice.ToolCall) {
			if call.Name != "query_knowledge_base" {
				log.Warn("unknown tool call", "tool", call.Name)
				if err := pipeline.SubmitToolResult(call.ID, "Function not found"); err != nil {
					log.Error("failed to reject tool call", log.Err(err))
				}
				return
			}

			question := call.String("question")
			history.AddToolCall(convo.ToolCall{ID: call.ID, Name: call.Name, Arguments: call.Arguments})
			dashboard.RecordToolCall(call.Name, question)

			sink := rag.NewResultSink(func(result string) error {
				if err := pipeline.SubmitToolResult(call.ID, result); err != nil {
					return err
				}
				history.AddToolResult(call.ID, result)
				return nil
			})
			sinks.add(sink)

			go func() {
				defer sinks.remove(sink)
				if err := handler.Handle(ctx, question, history, sink.Deliver); err != nil {
					log.Error("tool invocation failed", "tool", call.Name, log.Err(err))
					dashboard.RecordError(err)
				}
			}()
		},
		OnError: func(err error) {
			log.Error("pipeline error", log.Err(err))
			dashboard.RecordError(err)
		},
	}
	callbacks.Apply(pipeline)

	dashboard.Start()
	defer dashboard.Stop()

	log.Info("starting bot", "provider", cfg.Provider, "model", cfg.Model)
	if err := pipeline.Start(ctx); err != nil {
		log.Error("pipeline start failed", log.Err(err))
		os.Exit(1)
	}
	dashboard.SetConnected(true)

	<-ctx.Done()

	log.Info("shutting down")
	sinks.closeAll()
	dashboard.SetConnected(false)
	if err := pipeline.Stop(); err != nil {
		log.Warn("pipeline stop", log.Err(err))
	}
}

// sinkSet tracks in-flight tool-result sinks so a shutdown turns late
// deliveries into discards instead of writes to a dead session.
type sinkSet struct {
	mu    sync.Mutex
	sinks map[*rag.ResultSink]struct{}
}

func newSinkSet() *sinkSet {
	return &sinkSet{sinks: make(map[*rag.ResultSink]struct{})}
}

func (s *sinkSet) add(sink *rag.ResultSink) {
	s.mu.Lock()
	s.sinks[sink] = struct{}{}
	s.mu.Unlock()
}

func (s *sinkSet) remove(sink *rag.ResultSink) {
	s.mu.Lock()
	delete(s.sinks, sink)
	s.mu.Unlock()
}

func (s *sinkSet) closeAll() {
	s.mu.Lock()
	for sink := range s.sinks {
		sink.Close()
	}
	s.mu.Unlock()
}
