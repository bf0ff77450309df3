package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"thalia/internal/config"
)

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("oracle not configured: missing API key")

	// ErrEmptyResponse is returned when the API answered without any candidate text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// Generator is the narrow text-generation boundary the dialogue core
// consumes. Implementations may fail or return unparseable output; callers
// convert both into structured error outcomes.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient calls the Gemini generateContent API with a fixed model.
// Model selection is a deployment concern; each conversational task gets its
// own client bound to the model named in AIConfig.
type GeminiClient struct {
	config     *config.AIConfig
	model      string
	jsonOutput bool
	client     *http.Client
}

// NewGemini creates a client bound to one model. When jsonOutput is set, the
// request asks the API for an application/json response body, which the
// structured prompts rely on.
func NewGemini(cfg *config.AIConfig, model string, jsonOutput bool) *GeminiClient {
	return &GeminiClient{
		config:     cfg,
		model:      model,
		jsonOutput: jsonOutput,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// Generate sends the prompt and returns the first candidate's text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.config.IsEnabled() {
		return "", ErrNotConfigured
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
	}
	if c.jsonOutput {
		reqBody["generationConfig"] = map[string]interface{}{
			"responseMimeType": "application/json",
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", c.config.ModelEndpoint(c.model), c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model request failed with status %d", resp.StatusCode)
	}

	// Parse Gemini response structure
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", ErrEmptyResponse
}
