package config

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/photolog/internal/imaging"
	"github.com/kozaktomas/photolog/internal/layout"
	"github.com/kozaktomas/photolog/internal/render"
)

//go:embed presets.yaml
var presetsYAML []byte

type Config struct {
	Web      WebConfig
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	Ollama   OllamaConfig
	Database DatabaseConfig
	MariaDB  MariaDBConfig
	Layout   LayoutConfig
	Image    ImageConfig
	Presets  PresetsConfig
}

type WebConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string // CORS origins, empty allows any
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type OllamaConfig struct {
	URL   string // defaults to http://localhost:11434
	Model string // defaults to llama3.2-vision:11b
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type MariaDBConfig struct {
	DSN string // e.g. photolog:photolog@tcp(mariadb:3306)/photolog?parseTime=true
}

type LayoutConfig struct {
	PageSize   string  // preset key, defaults to a4
	Strategy   string  // measured or grouped
	GroupSize  int     // entries per page for grouped, defaults to 2
	TextRatio  float64 // text column share, defaults to 0.4
	BrandColor string  // overrides the preset colour
}

type ImageConfig struct {
	Policy  string // crop or fit
	Width   int // canvas width in px, height is Width*3/4
	Quality int
}

type PresetsConfig struct {
	PageSizes map[string]PageSizePreset `yaml:"page_sizes"`
	Brand     BrandPreset               `yaml:"brand"`
	Models    map[string]ModelPricing   `yaml:"models"`
}

type PageSizePreset struct {
	Name   string  `yaml:"name"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type BrandPreset struct {
	Title string `yaml:"title"`
	Color string `yaml:"color"`
}

type ModelPricing struct {
	Standard RequestPricing `yaml:"standard"`
}

type RequestPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat is envInt for positive floats.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return defaultVal
}

func envList(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func Load() *Config {
	var presets PresetsConfig
	if err := yaml.Unmarshal(presetsYAML, &presets); err != nil {
		panic("failed to unmarshal embedded presets.yaml: " + err.Error())
	}

	return &Config{
		Web: WebConfig{
			Host:           envString("WEB_HOST", "0.0.0.0"),
			Port:           envInt("WEB_PORT", 8080),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Ollama: OllamaConfig{
			URL:   os.Getenv("OLLAMA_URL"),
			Model: os.Getenv("OLLAMA_MODEL"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		MariaDB: MariaDBConfig{
			DSN: os.Getenv("MARIADB_DSN"),
		},
		Layout: LayoutConfig{
			PageSize:   strings.ToLower(envString("PHOTOLOG_PAGE_SIZE", "a4")),
			Strategy:   envString("PHOTOLOG_LAYOUT", string(layout.StrategyMeasured)),
			GroupSize:  envInt("PHOTOLOG_GROUP_SIZE", 2),
			TextRatio:  envFloat("PHOTOLOG_TEXT_RATIO", 0.4),
			BrandColor: os.Getenv("PHOTOLOG_BRAND_COLOR"),
		},
		Image: ImageConfig{
			Policy:  envString("PHOTOLOG_IMAGE_POLICY", string(imaging.PolicyCrop)),
			Width:   envInt("PHOTOLOG_IMAGE_WIDTH", 1200),
			Quality: envInt("PHOTOLOG_IMAGE_QUALITY", 85),
		},
		Presets: presets,
	}
}

// GetModelPricing returns pricing for a specific model, with fallback defaults
func (c *Config) GetModelPricing(modelName string) ModelPricing {
	if pricing, ok := c.Presets.Models[modelName]; ok {
		return pricing
	}
	return ModelPricing{}
}

// PageSizeNames returns the configured page size keys.
func (c *Config) PageSizeNames() []string {
	names := make([]string, 0, len(c.Presets.PageSizes))
	for k := range c.Presets.PageSizes {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// PageLayout builds the pagination config from the layout settings.
func (c *Config) PageLayout() (layout.Config, error) {
	cfg := layout.DefaultConfig()

	preset, ok := c.Presets.PageSizes[strings.ToLower(c.Layout.PageSize)]
	if !ok {
		return cfg, fmt.Errorf("unknown page size %q", c.Layout.PageSize)
	}
	cfg.Page = layout.PageSize{Name: preset.Name, WidthMM: preset.Width, HeightMM: preset.Height}

	strategy, err := layout.ParseStrategy(c.Layout.Strategy)
	if err != nil {
		return cfg, err
	}
	cfg.Strategy = strategy
	cfg.GroupSize = c.Layout.GroupSize
	cfg.TextColumnRatio = c.Layout.TextRatio

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid layout: %w", err)
	}
	return cfg, nil
}

// Style builds the render style from the brand presets.
func (c *Config) Style() (render.Style, error) {
	st := render.DefaultStyle()
	if c.Presets.Brand.Title != "" {
		st.Title = c.Presets.Brand.Title
	}
	color := c.Presets.Brand.Color
	if c.Layout.BrandColor != "" {
		color = c.Layout.BrandColor
	}
	if color != "" {
		brand, err := render.ParseHexColor(color)
		if err != nil {
			return st, err
		}
		st.Brand = brand
	}
	return st, nil
}

// NormalizeOptions builds the image normalizer options.
func (c *Config) NormalizeOptions() (imaging.Options, error) {
	policy, err := imaging.ParsePolicy(c.Image.Policy)
	if err != nil {
		return imaging.Options{}, err
	}
	return imaging.Options{
		Policy:  policy,
		Width:   c.Image.Width,
		Quality: min(c.Image.Quality, 100),
	}, nil
}
