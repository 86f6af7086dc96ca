package describe

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/kozaktomas/photolog/internal/imaging"
)

const geminiModel = "gemini-2.5-flash"

type GeminiProvider struct {
	usageTracker
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey string, pricing RequestPricing) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		usageTracker: usageTracker{pricing: pricing},
		client:       client,
	}, nil
}

func (p *GeminiProvider) Name() string {
	return geminiModel
}

func (p *GeminiProvider) Describe(ctx context.Context, imageData []byte, pc *PhotoContext) (*Description, error) {
	resizedData, err := imaging.Downscale(imageData, maxImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: describePrompt + "\n\n" + buildUserMessage(pc)},
				{InlineData: &genai.Blob{Data: resizedData, MIMEType: "image/jpeg"}},
			},
		},
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	return describeWithRetry(func(previous, feedback string) (string, error) {
		if feedback != "" {
			contents = append(contents,
				&genai.Content{Role: "model", Parts: []*genai.Part{{Text: previous}}},
				&genai.Content{Role: "user", Parts: []*genai.Part{{Text: feedback}}},
			)
		}

		result, err := p.client.Models.GenerateContent(ctx, geminiModel, contents, config)
		if err != nil {
			return "", fmt.Errorf("gemini API error: %w", err)
		}
		if result.UsageMetadata != nil {
			p.trackUsage(int64(result.UsageMetadata.PromptTokenCount), int64(result.UsageMetadata.CandidatesTokenCount))
		}

		content := result.Text()
		if content == "" {
			return "", errors.New("no response from Gemini")
		}
		return content, nil
	})
}
