package config

import "os"

// GeminiModels defines which Gemini models to use for different tasks
type GeminiModels struct {
	// Intent is for per-turn intent classification (needs to be fast)
	Intent string `json:"intent"`

	// Assessment is for the MRS flow's three calls: question generation,
	// response analysis, and score interpretation
	Assessment string `json:"assessment"`

	// Knowledge is for answering general menopause questions
	Knowledge string `json:"knowledge"`

	// Support is for empathetic emotional-support replies
	Support string `json:"support"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey    string       `json:"-"` // Never serialize
	BaseURL   string       `json:"baseUrl"`
	Models    GeminiModels `json:"models"`
	TimeoutMS int          `json:"timeoutMs"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		Models: GeminiModels{
			// Fast model for the per-turn classifier
			Intent: getEnvOrDefault("GEMINI_MODEL_INTENT", "gemini-2.5-flash-preview-05-20"),

			// Assessment turns block the conversation, so speed matters there too
			Assessment: getEnvOrDefault("GEMINI_MODEL_ASSESSMENT", "gemini-2.5-flash-preview-05-20"),

			// Quality models for the open-ended answer modes
			Knowledge: getEnvOrDefault("GEMINI_MODEL_KNOWLEDGE", "gemini-2.0-flash"),
			Support:   getEnvOrDefault("GEMINI_MODEL_SUPPORT", "gemini-2.0-flash"),
		},
		TimeoutMS: 10000, // 10 second default timeout
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
