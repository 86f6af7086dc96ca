package describe

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kozaktomas/photolog/internal/constants"
)

//go:embed prompts/describe.txt
var describePrompt string

const (
	maxRetries   = constants.DescribeMaxRetries
	maxImageSize = constants.DescribeImageSize
)

var errEmptyDescription = errors.New("description is empty")

// buildUserMessage builds the user message content for a photo.
// This is shared across all providers.
func buildUserMessage(pc *PhotoContext) string {
	parts := []string{"Describe this site photo."}
	if pc == nil {
		return parts[0]
	}
	if pc.ProjectName != "" {
		parts = append(parts, "Project: "+pc.ProjectName)
	}
	if pc.Date != "" {
		parts = append(parts, "Date taken: "+pc.Date)
	}
	if pc.Location != "" {
		parts = append(parts, "Location on site: "+pc.Location)
	}
	if pc.Notes != "" {
		parts = append(parts, "Inspector notes to refine: "+pc.Notes)
	}
	return strings.Join(parts, "\n")
}

// parseDescription decodes a model response into a Description.
func parseDescription(content string) (*Description, error) {
	var d Description
	if err := json.Unmarshal([]byte(extractJSON(content)), &d); err != nil {
		return nil, err
	}
	d.Description = strings.Join(strings.Fields(d.Description), " ")
	if d.Description == "" {
		return nil, errEmptyDescription
	}
	return &d, nil
}

// retryFeedback is sent back to the model after an unusable answer.
func retryFeedback(err error) string {
	return fmt.Sprintf("JSON parse error: %v. Please fix the JSON and try again. Remember to escape quotes inside strings with backslash. Output ONLY valid JSON, no other text.", err)
}

// extractJSON attempts to extract JSON from a response that may contain extra text
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	if start == -1 {
		return content
	}

	depth := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}
	return content[start:]
}

// exchange sends the conversation so far and returns the model's reply.
// feedback is empty on the first attempt.
type exchange func(previous, feedback string) (string, error)

// describeWithRetry runs send until it yields a usable description.
func describeWithRetry(send exchange) (*Description, error) {
	var lastError error
	var lastResponse, feedback string

	for range maxRetries {
		content, err := send(lastResponse, feedback)
		if err != nil {
			return nil, err
		}
		lastResponse = content

		d, err := parseDescription(content)
		if err != nil {
			lastError = err
			feedback = retryFeedback(err)
			continue
		}
		return d, nil
	}

	return nil, fmt.Errorf("failed to parse description JSON after %d attempts: %w (last response: %s)", maxRetries, lastError, lastResponse)
}
