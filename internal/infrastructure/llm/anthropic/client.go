package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kito-labs/risiti/internal/core/domain"
	"github.com/kito-labs/risiti/internal/infrastructure/resilience"
)

const apiVersion = "2023-06-01"

// Client calls the Anthropic messages API to extract structured receipt data
// from images, PDFs and plain text.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	MaxTokens          int
	HTTPTimeout        time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, apiKey, model string) *Client {
	return NewWithOptions(baseURL, apiKey, model, Options{})
}

func NewWithOptions(baseURL, apiKey, model string, options Options) *Client {
	maxTokens := options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	timeout := options.HTTPTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *blockSource `json:"source,omitempty"`
}

type blockSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// ExtractFromFile sends the receipt bytes as a vision input. Images go in an
// image block, PDFs in a document block; the model reads both natively.
func (c *Client) ExtractFromFile(ctx context.Context, mimeType string, data []byte) (domain.ExtractedReceipt, error) {
	blockType := "image"
	if mimeType == "application/pdf" {
		blockType = "document"
	}

	file := contentBlock{
		Type: blockType,
		Source: &blockSource{
			Type:      "base64",
			MediaType: mimeType,
			Data:      base64.StdEncoding.EncodeToString(data),
		},
	}
	return c.extract(ctx, "extract_file", []contentBlock{file, {Type: "text", Text: parsePrompt}})
}

// ExtractFromText runs the same extraction over plain text, used for the PDF
// text-layer fallback.
func (c *Client) ExtractFromText(ctx context.Context, text string) (domain.ExtractedReceipt, error) {
	prompt := parsePrompt + "\n\nReceipt text:\n" + text
	return c.extract(ctx, "extract_text", []contentBlock{{Type: "text", Text: prompt}})
}

func (c *Client) extract(ctx context.Context, operation string, content []contentBlock) (domain.ExtractedReceipt, error) {
	request := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []message{{Role: "user", Content: content}},
	}

	var response messagesResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/v1/messages", request, &response, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "anthropic."+operation, call, classifyAnthropicError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.ExtractedReceipt{}, wrapTemporaryIfNeeded(operation, err)
	}

	text := ""
	for _, block := range response.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	raw := stripCodeFences(text)
	if err := validateExtractionJSON(raw); err != nil {
		return domain.ExtractedReceipt{}, fmt.Errorf("validate extraction payload: %w", err)
	}

	var extracted domain.ExtractedReceipt
	if err := json.Unmarshal([]byte(raw), &extracted); err != nil {
		return domain.ExtractedReceipt{}, fmt.Errorf("parse extraction json: %w", err)
	}
	return extracted, nil
}

// stripCodeFences removes a surrounding markdown fence when the model ignores
// the no-markdown instruction.
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
