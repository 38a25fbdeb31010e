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

// claudeAPIURL is the Claude API endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeGuesser asks the Claude API to identify a citation. Configured as
// the premium tier by default (R3.3).
type ClaudeGuesser struct {
	Config types.AIConfig
	Client *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ID returns the guesser identifier.
func (c *ClaudeGuesser) ID() string { return "claude" }

// Guess asks the model for a structured citation guess. Unparsable model
// output is an explicit not-found, returned as (nil, nil).
func (c *ClaudeGuesser) Guess(ctx context.Context, citation types.Citation, docContext string) (*Guess, error) {
	prompt, err := renderPrompt(citation, docContext)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	text, err := withRetries(ctx, c.Config.MaxRetries, func() (string, error) {
		return c.call(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}
	return ParseGuess(text), nil
}

func (c *ClaudeGuesser) call(ctx context.Context, prompt string) (string, error) {
	reqBody := claudeRequest{
		Model:     c.Config.Model,
		MaxTokens: 1024,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.Config.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Claude API response")
}
