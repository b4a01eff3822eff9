// Package voice defines the boundary to the hosted conversational engine.
//
// The engine itself (VAD, speech recognition, the voice model, and speech
// synthesis) runs server-side; a Pipeline is a client handle to one live
// session. The package abstracts providers behind a common interface so the
// bot wiring and tests never depend on a concrete transport.
//
// # Usage
//
// Create a pipeline via the registered provider factory:
//
//	cfg := voice.DefaultConfig().WithSystemPrompt(prompt)
//	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
//
//	pipeline, err := voice.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pipeline.RegisterTool(voice.Tool{
//	    Name:        "query_knowledge_base",
//	    Description: "Query the knowledge base for the answer to the question.",
//	    Parameters:  schema,
//	})
//
//	pipeline.OnToolCall(func(call voice.ToolCall) {
//	    // answer and SubmitToolResult(call.ID, ...)
//	})
//
//	if err := pipeline.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer pipeline.Stop()
//
// Audio flows through SendAudio and OnAudioOut as 16-bit PCM. Transcript
// and response callbacks carry the text form of both sides of the
// conversation for logging and history tracking.
package voice
