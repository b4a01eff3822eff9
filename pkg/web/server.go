// Package web provides a real-time status dashboard for the concierge bot.
package web

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/bradwmorris/worldfair-connect/internal/log"
)

// maxEvents bounds the in-memory event buffer.
const maxEvents = 500

// SessionState is the current state of the bot for the dashboard.
type SessionState struct {
	SessionID         string `json:"session_id"`
	PipelineConnected bool   `json:"pipeline_connected"`
	Speaking          bool   `json:"speaking"`
	LastUserMessage   string `json:"last_user_message"`
	LastBotMessage    string `json:"last_bot_message"`
	ToolCalls         int    `json:"tool_calls"`
}

// Event is one dashboard feed entry.
type Event struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // transcript, response, tool, error
	Message string `json:"message"`
}

// Server serves session state and a live event feed over HTTP/WebSocket.
type Server struct {
	app  *fiber.App
	port string

	stateMu sync.RWMutex
	state   SessionState

	eventsMu sync.RWMutex
	events   []Event

	subsMu sync.Mutex
	subs   map[*websocket.Conn]chan Event
}

// NewServer creates a dashboard server for the given session ID.
func NewServer(port, sessionID string) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
		}),
		port:  port,
		state: SessionState{SessionID: sessionID},
		subs:  make(map[*websocket.Conn]chan Event),
	}

	s.app.Use(cors.New())

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	s.app.Get("/api/state", func(c *fiber.Ctx) error {
		s.stateMu.RLock()
		defer s.stateMu.RUnlock()
		return c.JSON(s.state)
	})

	s.app.Get("/api/events", func(c *fiber.Ctx) error {
		s.eventsMu.RLock()
		defer s.eventsMu.RUnlock()
		return c.JSON(s.events)
	})

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws/events", websocket.New(s.handleFeed))

	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		if err := s.app.Listen(":" + s.port); err != nil {
			log.Error("dashboard server stopped", log.Err(err))
		}
	}()
	log.Info("dashboard listening", "port", s.port)
}

// Stop shuts the server down.
func (s *Server) Stop() error {
	s.subsMu.Lock()
	for conn, ch := range s.subs {
		close(ch)
		delete(s.subs, conn)
	}
	s.subsMu.Unlock()
	return s.app.Shutdown()
}

// handleFeed streams events to one dashboard client.
func (s *Server) handleFeed(conn *websocket.Conn) {
	ch := make(chan Event, 64)

	s.subsMu.Lock()
	s.subs[conn] = ch
	s.subsMu.Unlock()

	defer func() {
		s.subsMu.Lock()
		if _, ok := s.subs[conn]; ok {
			close(ch)
			delete(s.subs, conn)
		}
		s.subsMu.Unlock()
		conn.Close()
	}()

	for ev := range ch {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

// publish appends an event and fans it out to feed subscribers.
func (s *Server) publish(evType, message string) {
	ev := Event{
		Time:    time.Now().Format("15:04:05"),
		Type:    evType,
		Message: message,
	}

	s.eventsMu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
	}
	s.eventsMu.Unlock()

	s.subsMu.Lock()
	for conn, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber, drop it
			close(ch)
			delete(s.subs, conn)
		}
	}
	s.subsMu.Unlock()
}

// SetConnected updates the pipeline connection state.
func (s *Server) SetConnected(connected bool) {
	s.stateMu.Lock()
	s.state.PipelineConnected = connected
	s.stateMu.Unlock()
}

// SetSpeaking updates the speaking indicator.
func (s *Server) SetSpeaking(speaking bool) {
	s.stateMu.Lock()
	s.state.Speaking = speaking
	s.stateMu.Unlock()
}

// RecordTranscript records a finalized user utterance.
func (s *Server) RecordTranscript(text string) {
	s.stateMu.Lock()
	s.state.LastUserMessage = text
	s.stateMu.Unlock()
	s.publish("transcript", text)
}

// RecordResponse records a finalized assistant response.
func (s *Server) RecordResponse(text string) {
	s.stateMu.Lock()
	s.state.LastBotMessage = text
	s.stateMu.Unlock()
	s.publish("response", text)
}

// RecordToolCall records a tool invocation.
func (s *Server) RecordToolCall(name, detail string) {
	s.stateMu.Lock()
	s.state.ToolCalls++
	s.stateMu.Unlock()
	s.publish("tool", fmt.Sprintf("%s: %s", name, detail))
}

// RecordError records a pipeline error.
func (s *Server) RecordError(err error) {
	s.publish("error", err.Error())
}

// State returns a snapshot of the current session state.
func (s *Server) State() SessionState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}
