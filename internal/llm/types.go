package llm

import (
	"context"
	"net/http"
	"time"
)

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// Model specifies the model to use. If empty, the client's default model is used.
	Model string

	// MaxTokens specifies the maximum number of tokens to generate.
	// If 0, no limit is applied.
	MaxTokens int

	// Temperature controls the randomness of the output.
	// If 0, the backend default applies.
	Temperature float32
}

// Summarizer turns transcript text into Markdown notes using a prompt.
// Every backend implements it.
type Summarizer interface {
	Summarize(ctx context.Context, text, prompt string) (string, error)
	Name() string
}

// newHTTPClient returns the HTTP client shared by the backends in this package.
// Generation for long chunks on local models can take minutes.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 5 * time.Minute}
}

// summaryTemperature keeps summaries close to the transcript.
const summaryTemperature = 0.3
