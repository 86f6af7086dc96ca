package handlers

import (
	"net/http"

	"github.com/kozaktomas/photolog/internal/config"
	"github.com/kozaktomas/photolog/internal/database"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config      *config.Config
	describeVia string
}

// NewConfigHandler creates a new config handler. describeVia names the
// active description model, empty when none is configured.
func NewConfigHandler(cfg *config.Config, describeVia string) *ConfigHandler {
	return &ConfigHandler{config: cfg, describeVia: describeVia}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	Providers   []ProviderInfo `json:"providers"`
	DescribeVia string         `json:"describe_via,omitempty"`
	PageSizes   []string       `json:"page_sizes"`
	PageSize    string         `json:"page_size"`
	Layout      string         `json:"layout"`
	ImagePolicy string         `json:"image_policy"`
	Storage     string         `json:"storage,omitempty"`
}

// ProviderInfo represents information about an AI provider
type ProviderInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Get returns the available configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	providers := []ProviderInfo{
		{Name: "openai", Available: h.config.OpenAI.Token != ""},
		{Name: "gemini", Available: h.config.Gemini.APIKey != ""},
		{Name: "ollama", Available: h.config.Ollama.URL != ""},
	}

	respondJSON(w, http.StatusOK, ConfigResponse{
		Providers:   providers,
		DescribeVia: h.describeVia,
		PageSizes:   h.config.PageSizeNames(),
		PageSize:    h.config.Layout.PageSize,
		Layout:      h.config.Layout.Strategy,
		ImagePolicy: h.config.Image.Policy,
		Storage:     database.Backend(),
	})
}
