package config

import (
	"os"
	"strings"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// API Settings
	APITitle   string
	APIVersion string
	APIPrefix  string
	Port       string

	// CORS
	CORSOrigins []string

	// Search logging
	SearchLogsEnabled bool

	// Vector Search Backend: "pgvector" or "vertex"
	VectorBackend string

	// Vertex AI Vector Search settings (used when VectorBackend = "vertex").
	// Each catalog has its own deployed index on the shared endpoint.
	VertexProjectID               string
	VertexLocation                string
	VertexIndexEndpointID         string
	VertexKStartupDeployedIndexID string
	VertexBizinfoDeployedIndexID  string
	VertexPublicEndpointDomain    string
}

var (
	config *Config
	once   sync.Once
)

// GetConfig returns the singleton configuration instance
func GetConfig() *Config {
	once.Do(func() {
		config = loadConfig()
	})
	return config
}

func loadConfig() *Config {
	return &Config{
		APITitle:    getEnv("API_TITLE", "Announcement Search API"),
		APIVersion:  getEnv("API_VERSION", "1.0.0"),
		APIPrefix:   getEnv("API_PREFIX", "/api"),
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: parseCORSOrigins(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		SearchLogsEnabled: getEnv("SEARCH_LOGS_ENABLED", "true") == "true",

		// Vector search backend configuration
		VectorBackend: getEnv("VECTOR_BACKEND", "pgvector"), // "pgvector" or "vertex"

		// Vertex AI settings
		VertexProjectID:               getEnv("VERTEX_PROJECT_ID", ""),
		VertexLocation:                getEnv("VERTEX_LOCATION", "us-central1"),
		VertexIndexEndpointID:         getEnv("VERTEX_INDEX_ENDPOINT_ID", ""),
		VertexKStartupDeployedIndexID: getEnv("VERTEX_KSTARTUP_DEPLOYED_INDEX_ID", ""),
		VertexBizinfoDeployedIndexID:  getEnv("VERTEX_BIZINFO_DEPLOYED_INDEX_ID", ""),
		VertexPublicEndpointDomain:    getEnv("VERTEX_PUBLIC_ENDPOINT_DOMAIN", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCORSOrigins(value string) []string {
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
