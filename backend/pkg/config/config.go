package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	apperrors "network-journal/backend/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port     string
	Env      string
	LogLevel string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// AI
	LLMBaseURL string
	LLMAPIKey  string
	ModelID    string

	// Owner of the network (the focal node)
	OwnerID   string
	OwnerName string

	// Graph view
	ViewportWidth   int
	ViewportHeight  int
	FrameRate       int
	DefaultLayout   string
	HiddenNodeTypes []string
	ShowLabels      bool
	ShowGlow        bool
	NodeSize        string
	LinkOpacity     float64
	AnimationSpeed  string
	GravityStrength string
	SpringStrength  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", ""),
		Neo4jURI:        getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:       getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:   getEnv("NEO4J_PASSWORD", "password"),
		LLMBaseURL:      getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:       getEnv("LLM_API_KEY", ""),
		ModelID:         getEnv("MODEL_ID", "gpt-4o-mini"),
		OwnerID:         getEnv("OWNER_ID", ""),
		OwnerName:       getEnv("OWNER_NAME", "Alice"),
		ViewportWidth:   getEnvInt("VIEWPORT_WIDTH", 1280),
		ViewportHeight:  getEnvInt("VIEWPORT_HEIGHT", 800),
		FrameRate:       getEnvInt("FRAME_RATE", 30),
		DefaultLayout:   getEnv("DEFAULT_LAYOUT", "force"),
		HiddenNodeTypes: getEnvList("HIDDEN_NODE_TYPES"),
		ShowLabels:      getEnvBool("SHOW_LABELS", true),
		ShowGlow:        getEnvBool("SHOW_GLOW", true),
		NodeSize:        getEnv("NODE_SIZE", "normal"),
		LinkOpacity:     getEnvFloat("LINK_OPACITY", 0.6),
		AnimationSpeed:  getEnv("ANIMATION_SPEED", "normal"),
		GravityStrength: getEnv("GRAVITY_STRENGTH", "normal"),
		SpringStrength:  getEnv("SPRING_STRENGTH", "normal"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_URI")
	}
	if c.Neo4jUser == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_USER")
	}
	if c.Neo4jPassword == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
	}
	if c.ModelID == "" {
		return apperrors.NewConfigMissingRequired("MODEL_ID")
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return apperrors.NewConfigValidationFailed("VIEWPORT_WIDTH/VIEWPORT_HEIGHT", "must be positive")
	}
	if c.FrameRate < 1 || c.FrameRate > 120 {
		return apperrors.NewConfigValidationFailed("FRAME_RATE", "must be between 1 and 120")
	}
	if c.LinkOpacity < 0 || c.LinkOpacity > 1 {
		return apperrors.NewConfigValidationFailed("LINK_OPACITY", "must be within [0,1]")
	}
	// LLM API key is optional; note extraction is disabled without it
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// NotesEnabled reports whether an LLM key is configured
func (c *Config) NotesEnabled() bool {
	return c.LLMAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
