// Package gemini talks to the external normalization service: a thin HTTP
// client plus a retrying gateway around it.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"editiongen/internal/logger"
)

// Failure classes of the normalization service. Only ErrOverloaded is
// transient; everything else terminates the call immediately.
var (
	ErrOverloaded       = errors.New("normalization service overloaded")
	ErrServiceFailure   = errors.New("normalization service error")
	ErrMalformedOutput  = errors.New("malformed normalization output")
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const systemInstruction = "You are an expert data normalization and translation AI. " +
	"Your task is to process a raw JSON object containing product data from various countries " +
	"and transform it into a clean, standardized, internationalized english language and consolidated JSON format."

// Service generates one structured-output completion per call. Implemented
// by Client; faked in tests.
type Service interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Ensure Client implements Service.
var _ Service = (*Client)(nil)

// Client is the HTTP client for the Gemini generateContent endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	logger     *logger.Logger
}

// NewClient creates a client for the given model. The timeout bounds a
// single request attempt.
func NewClient(model, apiKey string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		model:      model,
		apiKey:     apiKey,
		logger:     log,
	}
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generationConfig pins the decoding parameters. Temperature zero keeps
// repeated runs on identical input reproducible.
type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateContent sends one generation request and returns the response
// text. HTTP 503 maps to ErrOverloaded; every other failure is definitive.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents:          []content{{Parts: []part{{Text: prompt}}}},
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		GenerationConfig: &generationConfig{
			Temperature:      0,
			ResponseMimeType: "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceFailure, err)
	}
	defer resp.Body.Close()

	// Limit response size to 50MB; the full catalog fits well below this.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 50*1024*1024))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		return "", fmt.Errorf("%w: status %d", ErrOverloaded, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		if c.logger != nil {
			c.logger.Error("generation request failed", "status", resp.StatusCode, "body", string(body))
		}

		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: response contains no candidates", ErrMalformedOutput)
	}

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}
