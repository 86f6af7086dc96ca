// Package describe drafts photo log descriptions with vision language models.
package describe

import (
	"context"
	"sync"
)

// PhotoContext carries the entry fields that help the model describe a photo.
type PhotoContext struct {
	ProjectName string
	Date        string
	Location    string
	Notes       string // existing description to refine
}

// Description is the model's answer.
type Description struct {
	Description string `json:"description"`
}

// Provider defines the interface for description backends.
type Provider interface {
	Name() string
	Describe(ctx context.Context, imageData []byte, pc *PhotoContext) (*Description, error)

	// Usage tracking.
	GetUsage() Usage
	ResetUsage()
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalCost    float64 `json:"total_cost"` // in USD
}

// RequestPricing holds input/output prices per 1M tokens
type RequestPricing struct {
	Input  float64
	Output float64
}

// usageTracker accumulates usage across concurrent requests.
type usageTracker struct {
	mu      sync.Mutex
	usage   Usage
	pricing RequestPricing
}

func (u *usageTracker) trackUsage(inputTokens, outputTokens int64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.usage.InputTokens += int(inputTokens)
	u.usage.OutputTokens += int(outputTokens)
	u.usage.TotalCost += float64(inputTokens) / 1_000_000 * u.pricing.Input
	u.usage.TotalCost += float64(outputTokens) / 1_000_000 * u.pricing.Output
}

func (u *usageTracker) GetUsage() Usage {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.usage
}

func (u *usageTracker) ResetUsage() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.usage = Usage{}
}
