// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package guess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// openAIAPIURL is the OpenAI chat completions endpoint. Package-level var
// for test substitution.
var openAIAPIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIGuesser asks the OpenAI API to identify a citation. Configured as
// the cheap tier by default (R3.2).
type OpenAIGuesser struct {
	Config types.AIConfig
	Client *http.Client
}

// openAIRequest is the request body for the chat completions API.
type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

// openAIMessage is a single message in the chat conversation.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIResponse is the response body from the chat completions API.
type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
}

type openAIChoice struct {
	Message openAIMessage `json:"message"`
}

// ID returns the guesser identifier.
func (o *OpenAIGuesser) ID() string { return "openai" }

// Guess asks the model for a structured citation guess. Unparsable model
// output is an explicit not-found, returned as (nil, nil).
func (o *OpenAIGuesser) Guess(ctx context.Context, citation types.Citation, docContext string) (*Guess, error) {
	prompt, err := renderPrompt(citation, docContext)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	text, err := withRetries(ctx, o.Config.MaxRetries, func() (string, error) {
		return o.call(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}
	return ParseGuess(text), nil
}

func (o *OpenAIGuesser) call(ctx context.Context, prompt string) (string, error) {
	reqBody := openAIRequest{
		Model: o.Config.Model,
		Messages: []openAIMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.Config.APIKey)

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OpenAI API returned %d: %s", resp.StatusCode, string(body))
	}

	var oResp openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return "", fmt.Errorf("decoding OpenAI response: %w", err)
	}

	if len(oResp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI API returned no choices")
	}
	return oResp.Choices[0].Message.Content, nil
}
