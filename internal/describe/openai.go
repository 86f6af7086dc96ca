package describe

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/kozaktomas/photolog/internal/constants"
	"github.com/kozaktomas/photolog/internal/imaging"
)

const chatModel = openai.ChatModelGPT4_1Mini

type OpenAIProvider struct {
	usageTracker
	client *openai.Client
}

func NewOpenAIProvider(apiKey string, pricing RequestPricing) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		usageTracker: usageTracker{pricing: pricing},
		client:       &client,
	}
}

func (p *OpenAIProvider) Name() string {
	return chatModel
}

func (p *OpenAIProvider) Describe(ctx context.Context, imageData []byte, pc *PhotoContext) (*Description, error) {
	resizedData, err := imaging.Downscale(imageData, maxImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}
	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(resizedData)

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(describePrompt),
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
						openai.TextContentPart(buildUserMessage(pc)),
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
							URL:    imageURL,
							Detail: "low",
						}),
					},
				},
			},
		},
	}

	return describeWithRetry(func(previous, feedback string) (string, error) {
		if feedback != "" {
			messages = append(messages,
				openai.AssistantMessage(previous),
				openai.UserMessage(feedback),
			)
		}

		resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    chatModel,
			Messages: messages,
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			},
			MaxTokens: openai.Int(constants.DescribeMaxTokens),
		})
		if err != nil {
			return "", fmt.Errorf("OpenAI API error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("no response from OpenAI")
		}

		if resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 {
			p.trackUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		}
		return resp.Choices[0].Message.Content, nil
	})
}
