// Package ollama provides a local LLM backend over the Ollama chat API, for
// development without an AWS account. Structured output rides the API's
// native format parameter.
package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"curachef"
	"curachef/prompt"
)

type options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
}

type Client struct {
	endpoint   string
	model      string
	httpClient curachef.HTTPClient
	options    options
}

type ClientOpts struct {
	BaseEndpoint string
	ModelID      string
	HTTPClient   curachef.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.ModelID == "" {
		return nil, fmt.Errorf("model id is required")
	}
	if opts.HTTPClient == nil {
		return nil, fmt.Errorf("http client is required")
	}

	return &Client{
		model:      opts.ModelID,
		httpClient: opts.HTTPClient,
		endpoint:   opts.BaseEndpoint + "/api/chat",
		options: options{
			Temperature:   0.2,
			TopP:          0.9,
			RepeatPenalty: 1.05,
			NumCtx:        16384,
		},
	}, nil
}

type wireMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type wireRequest struct {
	Model    string          `json:"model"`
	Messages []wireMessage   `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   json.RawMessage `json:"format,omitempty"`
	Options  options         `json:"options,omitempty"`
}

type wireResponse struct {
	Message wireMessage `json:"message"`
	Done    bool        `json:"done"`
	// other metadata omitted but available
}

// Generate sends one non-streaming chat request. The output schema goes in
// the format field, which Ollama enforces server-side.
func (c *Client) Generate(ctx context.Context, req prompt.Request, image []byte) (string, error) {
	body, err := c.buildRequest(req, image, false)
	if err != nil {
		return "", err
	}

	resp, err := c.post(ctx, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM_CLIENT: %s: %s", resp.Status, string(raw))
	}

	var wr wireResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		slog.Warn("LLM_CLIENT: decode failed, returning raw", "err", err, "body_len", len(raw))
		return string(raw), nil
	}

	return wr.Message.Content, nil
}

// GenerateStream sends the same request with streaming enabled and
// concatenates the NDJSON content fragments in arrival order. The combined
// buffer is returned only once the done marker arrives.
func (c *Client) GenerateStream(ctx context.Context, req prompt.Request) (string, error) {
	body, err := c.buildRequest(req, nil, true)
	if err != nil {
		return "", err
	}

	resp, err := c.post(ctx, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("LLM_CLIENT: %s: %s", resp.Status, string(raw))
	}

	var buf strings.Builder
	fragments := 0
	dec := json.NewDecoder(resp.Body)
	for {
		var wr wireResponse
		if err := dec.Decode(&wr); err != nil {
			if err == io.EOF {
				return "", fmt.Errorf("stream ended without done marker")
			}
			return "", fmt.Errorf("decode stream fragment: %w", err)
		}
		buf.WriteString(wr.Message.Content)
		fragments++
		if wr.Done {
			break
		}
	}

	slog.Info("LLM_CLIENT: Ollama stream complete", "fragments", fragments, "buffer_len", buf.Len())
	return buf.String(), nil
}

func (c *Client) buildRequest(req prompt.Request, image []byte, stream bool) ([]byte, error) {
	format, err := json.Marshal(req.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output schema: %w", err)
	}

	msg := wireMessage{Role: "user", Content: req.Text}
	if len(image) > 0 {
		msg.Images = []string{base64.StdEncoding.EncodeToString(image)}
	}

	return json.Marshal(wireRequest{
		Model:    c.model,
		Messages: []wireMessage{msg},
		Stream:   stream,
		Format:   format,
		Options:  c.options,
	})
}

func (c *Client) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}
