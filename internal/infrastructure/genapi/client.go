package genapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/basel-ax/imagegen/internal/domain"
)

const (
	defaultBaseURL = "https://api.getimg.ai/v1"
	generatePath   = "/generate"
)

// Client represents the text-to-image API client
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a new API client. An empty baseURL selects the default endpoint.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// Ensure Client implements the domain.ImageGenerator interface
var _ domain.ImageGenerator = (*Client)(nil)

type textPrompt struct {
	Text string `json:"text"`
}

type generateBody struct {
	CfgScale    float64      `json:"cfg_scale"`
	Height      string       `json:"height"`
	Width       string       `json:"width"`
	Steps       int          `json:"steps"`
	Engine      string       `json:"engine"`
	TextPrompts []textPrompt `json:"text_prompts"`
}

type generateResult struct {
	SignedURLs []string `json:"signed_urls"`
	Error      string   `json:"error"`
	Message    string   `json:"message"`
}

// GenerateImage sends one generation request and returns the signed result URLs
func (c *Client) GenerateImage(ctx context.Context, req domain.ImageGenerationRequest) (*domain.ImageGenerationResponse, error) {
	payload, err := json.Marshal(generateBody{
		CfgScale:    req.GuidanceScale,
		Height:      req.Height,
		Width:       req.Width,
		Steps:       req.StepsModel,
		Engine:      string(req.Model),
		TextPrompts: []textPrompt{{Text: req.Prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var result generateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	message := result.Error
	if message == "" {
		message = result.Message
	}

	return &domain.ImageGenerationResponse{
		SignedURLs: result.SignedURLs,
		Message:    message,
	}, nil
}
