package onnx

import (
	"context"
	"fmt"
)

// Fixed graph names, per the inference runtime contract.
const (
	GraphDurationPredictor = "duration_predictor"
	GraphTextEncoder       = "text_encoder"
	GraphVectorEstimator   = "vector_estimator"
	GraphVocoder           = "vocoder"
)

func (e *Engine) runner(name string) (GraphRunner, error) {
	r, ok := e.runners[name]
	if !ok {
		return nil, fmt.Errorf("%s graph not found in engine", name)
	}

	return r, nil
}

// DurationPredictor runs the duration_predictor graph and returns duration,
// a float32 [B] tensor of predicted seconds per batch item.
func (e *Engine) DurationPredictor(ctx context.Context, textIDs, styleDP, textMask *Tensor) (*Tensor, error) {
	runner, err := e.runner(GraphDurationPredictor)
	if err != nil {
		return nil, err
	}

	outputs, err := runner.Run(ctx, map[string]*Tensor{
		"text_ids":  textIDs,
		"style_dp":  styleDP,
		"text_mask": textMask,
	})
	if err != nil {
		return nil, fmt.Errorf("duration_predictor: run: %w", err)
	}

	duration, ok := outputs["duration"]
	if !ok {
		return nil, fmt.Errorf("duration_predictor: missing 'duration' in output")
	}

	return duration, nil
}

// TextEncoder runs the text_encoder graph and returns the opaque text_emb
// tensor forwarded to the vector estimator unchanged.
func (e *Engine) TextEncoder(ctx context.Context, textIDs, styleTTL, textMask *Tensor) (*Tensor, error) {
	runner, err := e.runner(GraphTextEncoder)
	if err != nil {
		return nil, err
	}

	outputs, err := runner.Run(ctx, map[string]*Tensor{
		"text_ids":  textIDs,
		"style_ttl": styleTTL,
		"text_mask": textMask,
	})
	if err != nil {
		return nil, fmt.Errorf("text_encoder: run: %w", err)
	}

	textEmb, ok := outputs["text_emb"]
	if !ok {
		return nil, fmt.Errorf("text_encoder: missing 'text_emb' in output")
	}

	return textEmb, nil
}

// VectorEstimatorInputs bundles the seven named tensors a single denoising
// step consumes.
type VectorEstimatorInputs struct {
	NoisyLatent *Tensor
	TextEmb     *Tensor
	StyleTTL    *Tensor
	LatentMask  *Tensor
	TextMask    *Tensor
	CurrentStep *Tensor // float32 [B]
	TotalStep   *Tensor // float32 [B]
}

// VectorEstimator runs one step of the vector_estimator graph and returns
// denoised_latent, which preserves NoisyLatent's shape.
func (e *Engine) VectorEstimator(ctx context.Context, in VectorEstimatorInputs) (*Tensor, error) {
	runner, err := e.runner(GraphVectorEstimator)
	if err != nil {
		return nil, err
	}

	outputs, err := runner.Run(ctx, map[string]*Tensor{
		"noisy_latent": in.NoisyLatent,
		"text_emb":     in.TextEmb,
		"style_ttl":    in.StyleTTL,
		"latent_mask":  in.LatentMask,
		"text_mask":    in.TextMask,
		"current_step": in.CurrentStep,
		"total_step":   in.TotalStep,
	})
	if err != nil {
		return nil, fmt.Errorf("vector_estimator: run: %w", err)
	}

	denoised, ok := outputs["denoised_latent"]
	if !ok {
		return nil, fmt.Errorf("vector_estimator: missing 'denoised_latent' in output")
	}

	if got, want := denoised.Shape(), in.NoisyLatent.Shape(); !shapeEqual(got, want) {
		return nil, fmt.Errorf("vector_estimator: shape changed across step: got %v, want %v", got, want)
	}

	return denoised, nil
}

// Vocoder runs the vocoder graph and returns wav_tts, a float32 [N] tensor
// of time-domain samples.
func (e *Engine) Vocoder(ctx context.Context, latent *Tensor) (*Tensor, error) {
	runner, err := e.runner(GraphVocoder)
	if err != nil {
		return nil, err
	}

	outputs, err := runner.Run(ctx, map[string]*Tensor{"latent": latent})
	if err != nil {
		return nil, fmt.Errorf("vocoder: run: %w", err)
	}

	wav, ok := outputs["wav_tts"]
	if !ok {
		return nil, fmt.Errorf("vocoder: missing 'wav_tts' in output")
	}

	return wav, nil
}

func shapeEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
