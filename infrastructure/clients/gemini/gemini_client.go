package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/go-querystring/query"
	"nosbot/domain/model"
	"nosbot/domain/repository"
)

// Client calls the Gemini generateContent REST endpoint. It implements
// repository.ICompletion.
type Client struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
}

// Config represents Gemini API configuration
type Config struct {
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
	Endpoint string `json:"endpoint"`
}

type requestParams struct {
	Key string `url:"key"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewGeminiClient(config *Config) (repository.ICompletion, error) {
	if config.APIKey == "" {
		return nil, model.ErrNotConfigured
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		endpoint:   config.Endpoint,
		model:      config.Model,
		apiKey:     config.APIKey,
	}, nil
}

// Complete sends the prompt and returns the concatenated text of the first
// candidate.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	params, err := query.Values(requestParams{Key: c.apiKey})
	if err != nil {
		return "", fmt.Errorf("encode completion params: %w", err)
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?%s", c.endpoint, c.model, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: completion returned status %d", model.ErrUpstream, resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("%w: completion error %d: %s", model.ErrUpstream, decoded.Error.Code, decoded.Error.Message)
	}
	if len(decoded.Candidates) == 0 {
		return "", fmt.Errorf("%w: completion returned no candidates", model.ErrUpstream)
	}

	var text bytes.Buffer
	for _, p := range decoded.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}
