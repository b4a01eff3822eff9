// Package bundled provides the shipped voice.Pipeline implementations.
package bundled

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bradwmorris/worldfair-connect/internal/log"
	"github.com/bradwmorris/worldfair-connect/pkg/voice"
)

const (
	// Gemini Live API WebSocket endpoint
	geminiLiveURL = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	// Default model for Gemini Live
	geminiDefaultModel = "models/gemini-2.0-flash"
)

// Gemini implements voice.Pipeline as a client of Google's Gemini Live API.
// VAD, speech recognition, the voice model, and synthesis all run inside
// the hosted session; this type only streams audio and relays events.
type Gemini struct {
	config voice.Config

	// WebSocket connection
	ws   *websocket.Conn
	wsMu sync.Mutex

	// Tools
	tools    []voice.Tool
	toolsMap map[string]voice.Tool

	// Session state
	mu        sync.RWMutex
	connected bool
	closed    bool
	ctx       context.Context
	cancel    context.CancelFunc

	// Metrics
	metrics *voice.MetricsCollector

	// Transcription accumulators. The API streams transcripts as partial
	// chunks within a turn; these collect them until the turn boundary.
	// Touched only by the reader goroutine.
	inputBuf  strings.Builder
	outputBuf strings.Builder

	// Callbacks
	onAudioOut    func(pcm16 []byte)
	onSpeechStart func()
	onTranscript  func(text string, isFinal bool)
	onResponse    func(text string, isFinal bool)
	onToolCall    func(call voice.ToolCall)
	onError       func(err error)
}

// NewGemini creates a new Gemini Live pipeline.
func NewGemini(cfg voice.Config) (*Gemini, error) {
	if cfg.GoogleAPIKey == "" {
		return nil, voice.ErrMissingAPIKey
	}

	return &Gemini{
		config:   cfg,
		toolsMap: make(map[string]voice.Tool),
		metrics:  voice.NewMetricsCollector(),
	}, nil
}

// Start establishes the WebSocket connection and configures the session.
func (g *Gemini) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.connected {
		g.mu.Unlock()
		return voice.ErrAlreadyStarted
	}
	g.mu.Unlock()

	g.ctx, g.cancel = context.WithCancel(ctx)

	model := g.config.Model
	if model == "" {
		model = geminiDefaultModel
	}
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}

	url := fmt.Sprintf("%s?key=%s", geminiLiveURL, g.config.GoogleAPIKey)

	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	var err error
	g.ws, _, err = dialer.DialContext(g.ctx, url, header)
	if err != nil {
		return fmt.Errorf("voice/gemini: failed to connect: %w", err)
	}

	g.mu.Lock()
	g.connected = true
	g.closed = false
	g.mu.Unlock()

	if err := g.sendSetup(model); err != nil {
		g.Stop()
		return fmt.Errorf("voice/gemini: failed to configure session: %w", err)
	}

	go g.handleMessages()

	log.Debug("gemini live connected", "model", model)
	return nil
}

// sendSetup sends the initial session configuration.
func (g *Gemini) sendSetup(model string) error {
	var toolDeclarations []map[string]any
	for _, tool := range g.tools {
		toolDeclarations = append(toolDeclarations, map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"parameters":  tool.Parameters,
		})
	}

	// Gemini voices: Puck, Charon, Kore, Fenrir, Aoede
	voiceName := g.config.Voice
	if voiceName == "" {
		voiceName = "Puck"
	}

	setupBody := map[string]any{
		"model": model,
		"generation_config": map[string]any{
			"response_modalities": []string{"AUDIO"},
			"speech_config": map[string]any{
				"voice_config": map[string]any{
					"prebuilt_voice_config": map[string]any{
						"voice_name": voiceName,
					},
				},
			},
		},
		"system_instruction": map[string]any{
			"parts": []map[string]any{
				{"text": g.config.SystemPrompt},
			},
		},
		// Mirror both sides of the conversation as text events.
		"input_audio_transcription":  map[string]any{},
		"output_audio_transcription": map[string]any{},
	}

	if len(toolDeclarations) > 0 {
		setupBody["tools"] = []map[string]any{
			{"function_declarations": toolDeclarations},
		}
	}

	return g.sendJSON(map[string]any{"setup": setupBody})
}

// sendGreeting opens the conversation with a synthetic user turn so the
// assistant speaks first.
func (g *Gemini) sendGreeting() error {
	return g.sendJSON(map[string]any{
		"client_content": map[string]any{
			"turns": []map[string]any{
				{
					"role": "user",
					"parts": []map[string]any{
						{"text": g.config.Greeting},
					},
				},
			},
			"turn_complete": true,
		},
	})
}

// Stop gracefully shuts down the pipeline.
func (g *Gemini) Stop() error {
	g.mu.Lock()
	g.closed = true
	g.connected = false
	g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
	}

	if g.ws != nil {
		return g.ws.Close()
	}
	return nil
}

// IsConnected returns true if connected and ready.
func (g *Gemini) IsConnected() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.connected && !g.closed
}

// SendAudio sends PCM16 mono audio into the session.
func (g *Gemini) SendAudio(pcm16 []byte) error {
	g.mu.RLock()
	if !g.connected || g.closed {
		g.mu.RUnlock()
		return voice.ErrNotConnected
	}
	g.mu.RUnlock()

	g.metrics.IncrementAudioIn()

	msg := map[string]any{
		"realtime_input": map[string]any{
			"media_chunks": []map[string]any{
				{
					"data":      base64.StdEncoding.EncodeToString(pcm16),
					"mime_type": "audio/pcm",
				},
			},
		},
	}

	return g.sendJSON(msg)
}

// OnAudioOut sets the callback for audio output.
func (g *Gemini) OnAudioOut(fn func(pcm16 []byte)) {
	g.onAudioOut = fn
}

// OnSpeechStart sets the callback for speech start.
func (g *Gemini) OnSpeechStart(fn func()) {
	g.onSpeechStart = fn
}

// OnTranscript sets the callback for transcripts.
func (g *Gemini) OnTranscript(fn func(text string, isFinal bool)) {
	g.onTranscript = fn
}

// OnResponse sets the callback for assistant responses.
func (g *Gemini) OnResponse(fn func(text string, isFinal bool)) {
	g.onResponse = fn
}

// OnError sets the error callback.
func (g *Gemini) OnError(fn func(err error)) {
	g.onError = fn
}

// RegisterTool adds a tool the model can invoke.
func (g *Gemini) RegisterTool(tool voice.Tool) {
	g.tools = append(g.tools, tool)
	g.toolsMap[tool.Name] = tool
}

// OnToolCall sets the callback for tool invocations.
func (g *Gemini) OnToolCall(fn func(call voice.ToolCall)) {
	g.onToolCall = fn
}

// SubmitToolResult returns a tool result to the model.
func (g *Gemini) SubmitToolResult(callID string, result string) error {
	msg := map[string]any{
		"tool_response": map[string]any{
			"function_responses": []map[string]any{
				{
					"id":       callID,
					"response": map[string]any{"result": result},
				},
			},
		},
	}

	if err := g.sendJSON(msg); err != nil {
		return err
	}
	g.metrics.MarkToolResult()
	return nil
}

// Interrupt stops the current response. Gemini Live handles barge-in via
// its own VAD; sending audio during a response interrupts it.
func (g *Gemini) Interrupt() error {
	return nil
}

// Metrics returns current latency metrics.
func (g *Gemini) Metrics() voice.Metrics {
	return g.metrics.Current()
}

// Config returns the current configuration.
func (g *Gemini) Config() voice.Config {
	return g.config
}

// handleMessages processes incoming WebSocket messages until the session
// closes.
func (g *Gemini) handleMessages() {
	for {
		g.mu.RLock()
		closed := g.closed
		g.mu.RUnlock()

		if closed {
			return
		}

		_, message, err := g.ws.ReadMessage()
		if err != nil {
			g.mu.RLock()
			closed := g.closed
			g.mu.RUnlock()

			if !closed && g.onError != nil {
				g.onError(err)
			}
			return
		}

		var msg map[string]any
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Debug("gemini live: unparseable message", log.Err(err))
			continue
		}

		g.handleMessage(msg)
	}
}

// handleMessage dispatches a single Gemini Live message.
func (g *Gemini) handleMessage(msg map[string]any) {
	if _, ok := msg["setupComplete"]; ok {
		log.Debug("gemini live session ready")
		if g.config.Greeting != "" {
			if err := g.sendGreeting(); err != nil && g.onError != nil {
				g.onError(err)
			}
		}
		return
	}

	if serverContent, ok := msg["serverContent"].(map[string]any); ok {
		g.handleServerContent(serverContent)
		return
	}

	if toolCall, ok := msg["toolCall"].(map[string]any); ok {
		g.handleToolCall(toolCall)
		return
	}

	if _, ok := msg["toolCallCancellation"]; ok {
		log.Debug("gemini live: tool call cancelled")
		return
	}
}

// handleServerContent processes audio, text, and turn events.
func (g *Gemini) handleServerContent(content map[string]any) {
	if turnComplete, ok := content["turnComplete"].(bool); ok && turnComplete {
		g.flushTranscripts()
		g.metrics.MarkResponseDone()
		if g.config.Debug {
			m := g.metrics.Current()
			log.Debug("turn complete", "latency", m.FormatLatency())
		}
		return
	}

	// User started speaking during a response. The cut-off response still
	// gets finalized with whatever was transcribed before the barge-in.
	if interrupted, ok := content["interrupted"].(bool); ok && interrupted {
		g.flushTranscripts()
		if g.onSpeechStart != nil {
			g.onSpeechStart()
		}
		return
	}

	if modelTurn, ok := content["modelTurn"].(map[string]any); ok {
		if parts, ok := modelTurn["parts"].([]any); ok {
			for _, part := range parts {
				partMap, ok := part.(map[string]any)
				if !ok {
					continue
				}

				if inlineData, ok := partMap["inlineData"].(map[string]any); ok {
					g.handleInlineAudio(inlineData)
				}

				if text, ok := partMap["text"].(string); ok {
					g.metrics.MarkFirstToken()
					if g.onResponse != nil {
						g.onResponse(text, false)
					}
				}
			}
		}
	}

	// What the user said, streamed as partial chunks
	if inputTranscript, ok := content["inputTranscription"].(map[string]any); ok {
		if text, ok := inputTranscript["text"].(string); ok {
			if g.inputBuf.Len() == 0 {
				g.metrics.MarkSpeechEnd()
			}
			g.inputBuf.WriteString(text)
			if g.onTranscript != nil {
				g.onTranscript(text, false)
			}
		}
	}

	// What the assistant said, streamed as partial chunks
	if outputTranscript, ok := content["outputTranscription"].(map[string]any); ok {
		if text, ok := outputTranscript["text"].(string); ok {
			g.outputBuf.WriteString(text)
			if g.onResponse != nil {
				g.onResponse(text, false)
			}
		}
	}
}

// flushTranscripts emits the accumulated transcript chunks as one final
// user event and one final assistant event at a turn boundary.
func (g *Gemini) flushTranscripts() {
	if g.inputBuf.Len() > 0 {
		g.metrics.MarkTranscript()
		if g.onTranscript != nil {
			g.onTranscript(g.inputBuf.String(), true)
		}
		g.inputBuf.Reset()
	}
	if g.outputBuf.Len() > 0 {
		if g.onResponse != nil {
			g.onResponse(g.outputBuf.String(), true)
		}
		g.outputBuf.Reset()
	}
}

// handleInlineAudio decodes a PCM chunk and forwards it.
func (g *Gemini) handleInlineAudio(inlineData map[string]any) {
	mimeType, ok := inlineData["mimeType"].(string)
	if !ok || (mimeType != "audio/pcm" && mimeType != "audio/pcm;rate=24000") {
		return
	}

	data, ok := inlineData["data"].(string)
	if !ok {
		return
	}

	audioData, err := base64.StdEncoding.DecodeString(data)
	if err != nil || len(audioData) == 0 {
		return
	}

	g.metrics.MarkFirstAudio()
	g.metrics.IncrementAudioOut()
	if g.onAudioOut != nil {
		g.onAudioOut(audioData)
	}
}

// handleToolCall relays function calls from the model.
func (g *Gemini) handleToolCall(toolCall map[string]any) {
	functionCalls, ok := toolCall["functionCalls"].([]any)
	if !ok {
		return
	}

	for _, fc := range functionCalls {
		fcMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}

		name, _ := fcMap["name"].(string)
		id, _ := fcMap["id"].(string)
		args, _ := fcMap["args"].(map[string]any)

		g.metrics.MarkToolCall()
		log.Debug("gemini live tool call", "tool", name, "id", id)

		if g.onToolCall != nil {
			g.onToolCall(voice.ToolCall{ID: id, Name: name, Arguments: args})
			continue
		}

		// No external handler installed; execute the registered fallback.
		result := "Function not found"
		if tool, ok := g.toolsMap[name]; ok && tool.Handler != nil {
			var err error
			result, err = tool.Handler(args)
			if err != nil {
				result = fmt.Sprintf("Error: %v", err)
			}
		}
		if err := g.SubmitToolResult(id, result); err != nil && g.onError != nil {
			g.onError(err)
		}
	}
}

// sendJSON sends a JSON message over the WebSocket.
func (g *Gemini) sendJSON(v any) error {
	g.wsMu.Lock()
	defer g.wsMu.Unlock()

	if g.ws == nil {
		return voice.ErrNotConnected
	}

	return g.ws.WriteJSON(v)
}

// Ensure Gemini implements voice.Pipeline at compile time.
var _ voice.Pipeline = (*Gemini)(nil)

// Register the Gemini provider.
func init() {
	voice.Register(voice.ProviderGemini, func(cfg voice.Config) (voice.Pipeline, error) {
		return NewGemini(cfg)
	})
}
