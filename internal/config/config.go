package config

import (
	_ "embed"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed event_types.yaml
var eventTypesYAML []byte

type Config struct {
	Backend  BackendConfig
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Events   EventsConfig
}

type BackendConfig struct {
	URL string // Ailbums AI backend base URL; empty enables local duplicate search only
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL for the embedding cache (optional)
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type UploadConfig struct {
	Dir     string // spool directory for uploaded originals (default: os.TempDir)
	MaxSize int64  // max multipart form size in bytes
}

// EventType describes one event context and the highlight vocabulary the
// backend tags captions with for that context.
type EventType struct {
	Name       string   `yaml:"name"`
	Highlights []string `yaml:"highlights"`
}

type EventsConfig struct {
	Types map[string]EventType `yaml:"event_types"`
}

// Known reports whether slug is a configured event type.
func (e *EventsConfig) Known(slug string) bool {
	_, ok := e.Types[slug]
	return ok
}

// Slugs returns the configured event type slugs, sorted.
func (e *EventsConfig) Slugs() []string {
	slugs := make([]string, 0, len(e.Types))
	for slug := range e.Types {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
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

func Load() *Config {
	var events EventsConfig
	if err := yaml.Unmarshal(eventTypesYAML, &events); err != nil {
		// Embedded file, should never happen in practice.
		panic("failed to unmarshal embedded event_types.yaml: " + err.Error())
	}

	return &Config{
		Backend: BackendConfig{
			URL: os.Getenv("AILBUMS_BACKEND_URL"),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Upload: UploadConfig{
			Dir:     os.Getenv("UPLOAD_DIR"),
			MaxSize: int64(envInt("UPLOAD_MAX_SIZE_MB", 512)) << 20,
		},
		Events: events,
	}
}
