package describe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kozaktomas/photolog/internal/constants"
	"github.com/kozaktomas/photolog/internal/imaging"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.2-vision:11b"
)

// OllamaProvider talks to a local Ollama server. Usage is counted but free.
type OllamaProvider struct {
	usageTracker
	endpoint string
	model    string
	client   *http.Client
}

func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaProvider{
		endpoint: strings.TrimSuffix(baseURL, "/") + "/api/chat",
		model:    model,
		client:   &http.Client{Timeout: constants.RequestTimeout},
	}
}

func (p *OllamaProvider) Name() string {
	return p.model
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  struct {
		NumPredict int `json:"num_predict,omitempty"`
	} `json:"options"`
}

type ollamaResponse struct {
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
}

func (p *OllamaProvider) Describe(ctx context.Context, imageData []byte, pc *PhotoContext) (*Description, error) {
	preview, err := imaging.Downscale(imageData, maxImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}

	req := ollamaRequest{
		Model:  p.model,
		Format: "json",
		Messages: []ollamaMessage{
			{Role: "system", Content: describePrompt},
			{Role: "user", Content: buildUserMessage(pc), Images: []string{base64.StdEncoding.EncodeToString(preview)}},
		},
	}
	req.Options.NumPredict = constants.DescribeMaxTokens

	return describeWithRetry(func(previous, feedback string) (string, error) {
		if feedback != "" {
			req.Messages = append(req.Messages,
				ollamaMessage{Role: "assistant", Content: previous},
				ollamaMessage{Role: "user", Content: feedback},
			)
		}
		resp, err := p.chat(ctx, &req)
		if err != nil {
			return "", fmt.Errorf("ollama API error: %w", err)
		}
		p.trackUsage(int64(resp.PromptEvalCount), int64(resp.EvalCount))
		return resp.Message.Content, nil
	})
}

// chat sends one non-streaming chat request.
func (p *OllamaProvider) chat(ctx context.Context, req *ollamaRequest) (*ollamaResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &out, nil
}
