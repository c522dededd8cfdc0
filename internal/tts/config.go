package tts

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config mirrors tts.json: the pipeline parameters that drive shape
// arithmetic throughout the Latent Sampler and Inference Orchestrator. It is
// loaded once by the Session Manager and never mutated.
type Config struct {
	AE struct {
		SampleRate    int `json:"sample_rate"`
		BaseChunkSize int `json:"base_chunk_size"`
	} `json:"ae"`
	TTL struct {
		ChunkCompressFactor int `json:"chunk_compress_factor"`
		LatentDim           int `json:"latent_dim"`
	} `json:"ttl"`
}

// LoadConfig reads and decodes tts.json at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, newError(ConfigError, "LoadConfig", fmt.Errorf("read %s: %w", path, err))
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, newError(ConfigError, "LoadConfig", fmt.Errorf("decode %s: %w", path, err))
	}

	if cfg.AE.SampleRate <= 0 || cfg.AE.BaseChunkSize <= 0 || cfg.TTL.ChunkCompressFactor <= 0 || cfg.TTL.LatentDim <= 0 {
		return Config{}, newError(ConfigError, "LoadConfig", fmt.Errorf("%s has a non-positive required field", path))
	}

	return cfg, nil
}
