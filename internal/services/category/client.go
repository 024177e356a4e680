package category

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

const systemPrompt = "You are a helpful assistant that categorizes subscription services. " +
	"Return only the category name from this list: Entertainment, Productivity, Utilities, " +
	"Software, Health & Fitness, Education, News & Media, Cloud Storage, Other. " +
	"If unsure, return Other."

// GroqClient asks an OpenAI-compatible chat completion API to pick a
// category for a subscription name.
type GroqClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewGroqClient(apiKey, baseURL, model string, httpClient *http.Client) *GroqClient {
	return &GroqClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
	}
}

func (c *GroqClient) do(ctx context.Context, endpoint string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New("groq: unexpected status " + resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Suggest returns a category name for the given subscription name.
func (c *GroqClient) Suggest(ctx context.Context, name string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("groq: API key is not configured")
	}

	reqBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": "Categorize this subscription: " + name},
		},
	}
	var respBody struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.do(ctx, "/chat/completions", reqBody, &respBody); err != nil {
		return "", err
	}
	if len(respBody.Choices) == 0 {
		return "", errors.New("groq: empty response")
	}
	return strings.TrimSpace(respBody.Choices[0].Message.Content), nil
}
