package voice

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Mock is an in-process Pipeline for tests and offline wiring. Incoming
// events are injected with the Emit helpers; submitted tool results are
// recorded for inspection.
type Mock struct {
	mu        sync.Mutex
	cfg       Config
	connected bool

	tools   []Tool
	results []ToolResult
	sent    [][]byte

	metrics *MetricsCollector

	onAudioOut    func(pcm16 []byte)
	onSpeechStart func()
	onTranscript  func(text string, isFinal bool)
	onResponse    func(text string, isFinal bool)
	onToolCall    func(call ToolCall)
	onError       func(err error)
}

// NewMock creates a mock pipeline.
func NewMock(cfg Config) *Mock {
	return &Mock{cfg: cfg, metrics: NewMetricsCollector()}
}

func (m *Mock) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connected {
		return ErrAlreadyStarted
	}
	m.connected = true
	return nil
}

func (m *Mock) Stop() error {
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()
	return nil
}

func (m *Mock) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *Mock) SendAudio(pcm16 []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrNotConnected
	}
	buf := make([]byte, len(pcm16))
	copy(buf, pcm16)
	m.sent = append(m.sent, buf)
	return nil
}

func (m *Mock) OnAudioOut(fn func(pcm16 []byte))            { m.onAudioOut = fn }
func (m *Mock) OnSpeechStart(fn func())                     { m.onSpeechStart = fn }
func (m *Mock) OnTranscript(fn func(text string, isFinal bool)) { m.onTranscript = fn }
func (m *Mock) OnResponse(fn func(text string, isFinal bool))   { m.onResponse = fn }
func (m *Mock) OnError(fn func(err error))                  { m.onError = fn }
func (m *Mock) OnToolCall(fn func(call ToolCall))           { m.onToolCall = fn }

func (m *Mock) RegisterTool(tool Tool) {
	m.mu.Lock()
	m.tools = append(m.tools, tool)
	m.mu.Unlock()
}

func (m *Mock) SubmitToolResult(callID string, result string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrNotConnected
	}
	m.results = append(m.results, ToolResult{CallID: callID, Result: result})
	return nil
}

func (m *Mock) Interrupt() error { return nil }

func (m *Mock) Metrics() Metrics { return m.metrics.Current() }
func (m *Mock) Config() Config   { return m.cfg }

// EmitToolCall injects a tool call as if the engine requested it.
// Returns the generated call ID.
func (m *Mock) EmitToolCall(name string, args map[string]any) string {
	id := uuid.NewString()
	if m.onToolCall != nil {
		m.onToolCall(ToolCall{ID: id, Name: name, Arguments: args})
	}
	return id
}

// EmitTranscript injects a user transcript event.
func (m *Mock) EmitTranscript(text string, isFinal bool) {
	if m.onTranscript != nil {
		m.onTranscript(text, isFinal)
	}
}

// EmitResponse injects an assistant response event.
func (m *Mock) EmitResponse(text string, isFinal bool) {
	if m.onResponse != nil {
		m.onResponse(text, isFinal)
	}
}

// EmitAudio injects synthesized audio output.
func (m *Mock) EmitAudio(pcm16 []byte) {
	if m.onAudioOut != nil {
		m.onAudioOut(pcm16)
	}
}

// Results returns the tool results submitted so far.
func (m *Mock) Results() []ToolResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ToolResult, len(m.results))
	copy(out, m.results)
	return out
}

// SentAudio returns the audio chunks sent into the pipeline.
func (m *Mock) SentAudio() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent
}

// Tools returns the registered tools.
func (m *Mock) Tools() []Tool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tools
}

// Ensure Mock implements Pipeline at compile time.
var _ Pipeline = (*Mock)(nil)

func init() {
	Register(ProviderMock, func(cfg Config) (Pipeline, error) {
		return NewMock(cfg), nil
	})
}
