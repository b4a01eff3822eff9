package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Common errors returned by pipelines.
var (
	ErrNotConnected   = errors.New("voice: pipeline not connected")
	ErrAlreadyStarted = errors.New("voice: pipeline already started")
	ErrMissingAPIKey  = errors.New("voice: missing API key")
)

// Pipeline is a client handle to one live conversational session.
type Pipeline interface {
	// Lifecycle

	// Start establishes the connection and begins processing.
	// Call this after registering tools and setting up callbacks.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the pipeline.
	Stop() error

	// IsConnected returns true if the pipeline is connected and ready.
	IsConnected() bool

	// Audio I/O

	// SendAudio sends PCM16 mono audio into the session.
	SendAudio(pcm16 []byte) error

	// OnAudioOut sets the callback for synthesized audio output.
	OnAudioOut(fn func(pcm16 []byte))

	// Events

	// OnSpeechStart is called when the user starts speaking,
	// including barge-in during a response.
	OnSpeechStart(fn func())

	// OnTranscript is called with the user's transcribed speech.
	OnTranscript(fn func(text string, isFinal bool))

	// OnResponse is called with the assistant's text response.
	OnResponse(fn func(text string, isFinal bool))

	// OnError is called when an error occurs.
	OnError(fn func(err error))

	// Tools

	// RegisterTool adds a tool the model can invoke.
	// Must be called before Start().
	RegisterTool(tool Tool)

	// OnToolCall sets the callback for tool invocations. The callback
	// receives the call ID, tool name, and parsed arguments; answer with
	// SubmitToolResult using the same call ID.
	OnToolCall(fn func(call ToolCall))

	// SubmitToolResult returns a tool call result to the model.
	SubmitToolResult(callID string, result string) error

	// Control

	// Interrupt stops the current response (for barge-in).
	Interrupt() error

	// Observability

	// Metrics returns current latency metrics.
	Metrics() Metrics

	// Config returns the current configuration.
	Config() Config
}

// Factory creates a Pipeline from a validated configuration.
type Factory func(cfg Config) (Pipeline, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[Provider]Factory)
)

// Register installs a provider factory. Bundled implementations call this
// from init().
func Register(p Provider, f Factory) {
	registryMu.Lock()
	registry[p] = f
	registryMu.Unlock()
}

// New creates a Pipeline for the configured provider.
func New(cfg Config) (Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registryMu.RLock()
	f, ok := registry[cfg.Provider]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("voice: no pipeline registered for provider %q", cfg.Provider)
	}
	return f(cfg)
}

// Callbacks groups all pipeline callbacks for convenience.
type Callbacks struct {
	OnAudioOut    func(pcm16 []byte)
	OnSpeechStart func()
	OnTranscript  func(text string, isFinal bool)
	OnResponse    func(text string, isFinal bool)
	OnToolCall    func(call ToolCall)
	OnError       func(err error)
}

// Apply sets all non-nil callbacks on a pipeline.
func (c *Callbacks) Apply(p Pipeline) {
	if c.OnAudioOut != nil {
		p.OnAudioOut(c.OnAudioOut)
	}
	if c.OnSpeechStart != nil {
		p.OnSpeechStart(c.OnSpeechStart)
	}
	if c.OnTranscript != nil {
		p.OnTranscript(c.OnTranscript)
	}
	if c.OnResponse != nil {
		p.OnResponse(c.OnResponse)
	}
	if c.OnToolCall != nil {
		p.OnToolCall(c.OnToolCall)
	}
	if c.OnError != nil {
		p.OnError(c.OnError)
	}
}
