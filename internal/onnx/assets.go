package onnx

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// assetGraphFiles maps the four fixed graph names to their asset filenames,
// per the inference runtime contract's asset layout.
var assetGraphFiles = map[string]string{
	GraphDurationPredictor: "duration_predictor_quant.onnx",
	GraphTextEncoder:       "text_encoder_quant.onnx",
	GraphVectorEstimator:   "vector_estimator_quant.onnx",
	GraphVocoder:           "vocoder_quant.onnx",
}

// NewEngineFromAssetRoot builds an Engine by resolving the four fixed ONNX
// graph files under assetRoot directly, without an intermediate manifest
// JSON file (the asset layout has no manifest; filenames are fixed).
func NewEngineFromAssetRoot(assetRoot string, cfg RunnerConfig) (*Engine, error) {
	runners := make(map[string]GraphRunner, len(assetGraphFiles))

	for name, filename := range assetGraphFiles {
		path := filepath.Clean(filepath.Join(assetRoot, filename))

		if _, err := os.Stat(path); err != nil {
			closeAll(runners)
			return nil, fmt.Errorf("graph file for %q: %w", name, err)
		}

		meta := Session{Name: name, Path: path}

		runner, err := NewRunner(meta, cfg)
		if err != nil {
			closeAll(runners)
			return nil, fmt.Errorf("create runner %q: %w", name, err)
		}

		runners[name] = runner
		slog.Info("created ONNX runner", "graph", name, "path", path)
	}

	return &Engine{runners: runners}, nil
}

func closeAll(runners map[string]GraphRunner) {
	for _, r := range runners {
		r.Close()
	}
}
