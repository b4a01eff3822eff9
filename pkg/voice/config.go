package voice

import (
	"errors"
	"time"
)

// Provider identifies the conversational engine behind a pipeline.
type Provider string

const (
	// ProviderGemini uses Google's Gemini Live API.
	ProviderGemini Provider = "gemini"

	// ProviderMock is an in-process fake for tests and offline wiring.
	ProviderMock Provider = "mock"
)

// Config holds all tunable parameters for a voice session.
type Config struct {
	// Provider selection
	Provider Provider

	// API keys (provider-specific)
	GoogleAPIKey string

	// Audio settings
	InputSampleRate  int           // PCM16 input rate (default: 16000)
	OutputSampleRate int           // PCM16 output rate (default: 24000)
	BufferDuration   time.Duration // audio buffered before sending (default: 100ms)

	// Model settings
	Model        string // conversation model (default: gemini-2.0-flash)
	Voice        string // synthesis voice name (default: "Puck")
	SystemPrompt string // system instructions for the assistant
	Greeting     string // synthetic user turn that opens the conversation

	// Debug settings
	Debug bool // enable verbose session logging
}

// DefaultConfig returns a Config with defaults for Gemini Live.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderGemini,

		InputSampleRate:  16000,
		OutputSampleRate: 24000,
		BufferDuration:   100 * time.Millisecond,

		Model:    "gemini-2.0-flash",
		Voice:    "Puck",
		Greeting: "Greet the user.",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			return errors.New("voice: Google API key required")
		}
	case ProviderMock:
		// No credentials needed.
	default:
		return errors.New("voice: unknown provider: " + string(c.Provider))
	}

	// Zero sample rates mean the provider's defaults.
	if c.InputSampleRate < 0 || c.OutputSampleRate < 0 {
		return errors.New("voice: sample rates must not be negative")
	}

	return nil
}

// WithProvider returns a copy with the provider set.
func (c Config) WithProvider(p Provider) Config {
	c.Provider = p
	return c
}

// WithModel returns a copy with the conversation model set.
func (c Config) WithModel(model string) Config {
	c.Model = model
	return c
}

// WithVoice returns a copy with the synthesis voice set.
func (c Config) WithVoice(voice string) Config {
	c.Voice = voice
	return c
}

// WithSystemPrompt returns a copy with the system prompt set.
func (c Config) WithSystemPrompt(prompt string) Config {
	c.SystemPrompt = prompt
	return c
}

// WithDebug returns a copy with debug enabled.
func (c Config) WithDebug(debug bool) Config {
	c.Debug = debug
	return c
}
