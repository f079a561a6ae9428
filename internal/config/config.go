package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Face      FaceConfig      `yaml:"face"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Paths     PathsConfig     `yaml:"paths"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type FaceConfig struct {
	// MatchThreshold is the minimum confidence (1 - distance) required to
	// report a recognition match. Runtime-adjustable within [0.1, 1.0].
	MatchThreshold float64 `yaml:"match_threshold"`
	// MaxFacesPerWorker caps how many faces one worker can enroll.
	MaxFacesPerWorker int `yaml:"max_faces_per_worker"`
}

type ExtractorConfig struct {
	URL string `yaml:"url"` // face-extraction server, defaults to http://localhost:8000
}

type PathsConfig struct {
	StoreFile  string `yaml:"store_file"`  // serialized face index
	ArchiveDir string `yaml:"archive_dir"` // enrolled originals
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

// envFloat reads an environment variable and parses it as a positive float.
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

func envStr(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Face: FaceConfig{
			MatchThreshold:    0.6,
			MaxFacesPerWorker: 10,
		},
		Extractor: ExtractorConfig{
			URL: "http://localhost:8000",
		},
		Paths: PathsConfig{
			StoreFile:  "known_faces.gob",
			ArchiveDir: "known_faces",
		},
	}
}

// Load builds the configuration: defaults, then the optional YAML file named
// by FACE_SERVICE_CONFIG, then environment variables on top.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("FACE_SERVICE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.Server.Host = envStr("FACE_SERVICE_HOST", cfg.Server.Host)
	cfg.Server.Port = envInt("FACE_SERVICE_PORT", cfg.Server.Port)
	cfg.Face.MatchThreshold = envFloat("FACE_MATCH_THRESHOLD", cfg.Face.MatchThreshold)
	cfg.Face.MaxFacesPerWorker = envInt("MAX_FACES_PER_WORKER", cfg.Face.MaxFacesPerWorker)
	cfg.Extractor.URL = envStr("EXTRACTOR_URL", cfg.Extractor.URL)
	cfg.Paths.StoreFile = envStr("KNOWN_FACES_FILE", cfg.Paths.StoreFile)
	cfg.Paths.ArchiveDir = envStr("KNOWN_FACES_DIR", cfg.Paths.ArchiveDir)

	// Same range the runtime threshold update enforces.
	if cfg.Face.MatchThreshold < 0.1 || cfg.Face.MatchThreshold > 1.0 {
		return nil, fmt.Errorf("face match threshold %g out of range [0.1, 1.0]", cfg.Face.MatchThreshold)
	}

	return cfg, nil
}
