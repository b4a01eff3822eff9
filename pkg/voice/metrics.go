package voice

import (
	"sync"
	"time"
)

// Metrics tracks latency at each stage of a conversation turn.
// All durations are measured from the moment the user stops talking.
type Metrics struct {
	// Timestamps for key events
	SpeechEndTime    time.Time // when the engine detected end of speech
	TranscriptTime   time.Time // when transcription completed
	FirstTokenTime   time.Time // when the first response token arrived
	FirstAudioTime   time.Time // when the first audio chunk arrived
	ToolCallTime     time.Time // when a tool call was received
	ToolResultTime   time.Time // when its result was submitted
	ResponseDoneTime time.Time // when the response fully delivered

	// Computed latencies (from speech end)
	ASRLatency    time.Duration // time to complete transcription
	LLMFirstToken time.Duration // time to first response token
	TTSFirstAudio time.Duration // time to first audio chunk
	ToolLatency   time.Duration // tool call receipt to result submission
	TotalLatency  time.Duration // total end-to-end latency

	// Counts for this conversation turn
	AudioChunksIn  int // audio chunks sent to the engine
	AudioChunksOut int // audio chunks received from the engine
}

// MetricsCollector collects latency metrics during a conversation turn.
// It is goroutine-safe and can be used from multiple callbacks.
type MetricsCollector struct {
	mu      sync.Mutex
	current Metrics
	history []Metrics // recent turns for averaging
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		history: make([]Metrics, 0, 100),
	}
}

// MarkSpeechEnd records when the user stopped speaking.
// This is the reference point for all latency measurements.
func (m *MetricsCollector) MarkSpeechEnd() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = Metrics{} // reset for new turn
	m.current.SpeechEndTime = time.Now()
}

// MarkTranscript records when transcription completed.
func (m *MetricsCollector) MarkTranscript() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.TranscriptTime = time.Now()
	if !m.current.SpeechEndTime.IsZero() {
		m.current.ASRLatency = m.current.TranscriptTime.Sub(m.current.SpeechEndTime)
	}
}

// MarkFirstToken records when the first response token arrived.
func (m *MetricsCollector) MarkFirstToken() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current.FirstTokenTime.IsZero() {
		m.current.FirstTokenTime = time.Now()
		if !m.current.SpeechEndTime.IsZero() {
			m.current.LLMFirstToken = m.current.FirstTokenTime.Sub(m.current.SpeechEndTime)
		}
	}
}

// MarkFirstAudio records when the first audio chunk arrived.
func (m *MetricsCollector) MarkFirstAudio() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current.FirstAudioTime.IsZero() {
		m.current.FirstAudioTime = time.Now()
		if !m.current.SpeechEndTime.IsZero() {
			m.current.TTSFirstAudio = m.current.FirstAudioTime.Sub(m.current.SpeechEndTime)
		}
	}
}

// MarkToolCall records when a tool call was received from the engine.
func (m *MetricsCollector) MarkToolCall() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.ToolCallTime = time.Now()
}

// MarkToolResult records when the tool result was submitted back.
func (m *MetricsCollector) MarkToolResult() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.ToolResultTime = time.Now()
	if !m.current.ToolCallTime.IsZero() {
		m.current.ToolLatency = m.current.ToolResultTime.Sub(m.current.ToolCallTime)
	}
}

// MarkResponseDone records when the response is fully delivered.
func (m *MetricsCollector) MarkResponseDone() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.ResponseDoneTime = time.Now()
	if !m.current.SpeechEndTime.IsZero() {
		m.current.TotalLatency = m.current.ResponseDoneTime.Sub(m.current.SpeechEndTime)
	}
	// Archive this turn
	m.history = append(m.history, m.current)
	if len(m.history) > 100 {
		m.history = m.history[1:]
	}
}

// IncrementAudioIn increments the count of audio chunks sent.
func (m *MetricsCollector) IncrementAudioIn() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.AudioChunksIn++
}

// IncrementAudioOut increments the count of audio chunks received.
func (m *MetricsCollector) IncrementAudioOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.AudioChunksOut++
}

// Current returns the current metrics snapshot.
func (m *MetricsCollector) Current() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Average returns average latencies over recent turns.
func (m *MetricsCollector) Average() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.history) == 0 {
		return Metrics{}
	}

	var avg Metrics
	for _, h := range m.history {
		avg.ASRLatency += h.ASRLatency
		avg.LLMFirstToken += h.LLMFirstToken
		avg.TTSFirstAudio += h.TTSFirstAudio
		avg.ToolLatency += h.ToolLatency
		avg.TotalLatency += h.TotalLatency
	}

	n := time.Duration(len(m.history))
	avg.ASRLatency /= n
	avg.LLMFirstToken /= n
	avg.TTSFirstAudio /= n
	avg.ToolLatency /= n
	avg.TotalLatency /= n

	return avg
}

// FormatLatency returns a formatted string of current latencies.
func (m *Metrics) FormatLatency() string {
	return formatDuration(m.ASRLatency) + " ASR | " +
		formatDuration(m.LLMFirstToken) + " LLM | " +
		formatDuration(m.TTSFirstAudio) + " TTS | " +
		formatDuration(m.ToolLatency) + " TOOL | " +
		formatDuration(m.TotalLatency) + " TOTAL"
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "---ms"
	}
	return d.Round(time.Millisecond).String()
}
