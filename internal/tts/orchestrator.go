package tts

import (
	"context"
	"fmt"

	"github.com/example/supertonic-go/internal/latent"
	"github.com/example/supertonic-go/internal/onnx"
	"github.com/example/supertonic-go/internal/voice"
)

// chunkResult is one chunk's synthesized waveform and its reported duration
// (the duration-predictor output divided by speed).
type chunkResult struct {
	samples  []float32
	duration float32
}

// synthesizeChunk runs the full four-module pipeline for a single text
// chunk (B == 1 throughout): tokenize+mask, duration prediction, text
// encoding, latent sampling, the sequential denoising loop, and the
// vocoder.
func synthesizeChunk(ctx context.Context, s *Session, rng latent.Source, chunkText string, style *voice.Style, totalStep int, speed float32) (chunkResult, error) {
	tokenIDs, textMask := s.Indexer.Index([]string{chunkText})
	lTextLen := int64(len(tokenIDs[0]))

	textIDsTensor, err := onnx.NewTensor(tokenIDs[0], []int64{1, lTextLen})
	if err != nil {
		return chunkResult{}, newError(EncodingError, "synthesizeChunk", fmt.Errorf("build text_ids tensor: %w", err))
	}

	textMaskTensor, err := onnx.NewTensor(textMask[0][0], []int64{1, 1, lTextLen})
	if err != nil {
		return chunkResult{}, newError(EncodingError, "synthesizeChunk", fmt.Errorf("build text_mask tensor: %w", err))
	}

	styleDPTensor, err := namedTensorToONNX(style.StyleDP)
	if err != nil {
		return chunkResult{}, newError(ShapeMismatch, "synthesizeChunk", err)
	}

	styleTTLTensor, err := namedTensorToONNX(style.StyleTTL)
	if err != nil {
		return chunkResult{}, newError(ShapeMismatch, "synthesizeChunk", err)
	}

	durationTensor, err := s.Engine.DurationPredictor(ctx, textIDsTensor, styleDPTensor, textMaskTensor)
	if err != nil {
		return chunkResult{}, newError(InferenceFailure, "duration_predictor", err)
	}

	durationRaw, err := onnx.ExtractFloat32(durationTensor)
	if err != nil {
		return chunkResult{}, newError(ShapeMismatch, "duration_predictor", err)
	}

	durations := make([]float32, len(durationRaw))
	for i, d := range durationRaw {
		durations[i] = d / speed
	}

	textEmb, err := s.Engine.TextEncoder(ctx, textIDsTensor, styleTTLTensor, textMaskTensor)
	if err != nil {
		return chunkResult{}, newError(InferenceFailure, "text_encoder", err)
	}

	params := latent.Params{
		SampleRate:          s.Config.AE.SampleRate,
		BaseChunkSize:       s.Config.AE.BaseChunkSize,
		ChunkCompressFactor: s.Config.TTL.ChunkCompressFactor,
		LatentDim:           s.Config.TTL.LatentDim,
	}

	sample := latent.Draw(rng, durations, params)

	xTensor, err := onnx.NewTensor(sample.X, sample.Shape)
	if err != nil {
		return chunkResult{}, newError(EncodingError, "synthesizeChunk", fmt.Errorf("build initial latent tensor: %w", err))
	}

	latentMaskTensor, err := onnx.NewTensor(sample.LatentMask[0][0], []int64{sample.Shape[0], 1, sample.Shape[2]})
	if err != nil {
		return chunkResult{}, newError(EncodingError, "synthesizeChunk", fmt.Errorf("build latent_mask tensor: %w", err))
	}

	for step := 0; step < totalStep; step++ {
		if err := ctx.Err(); err != nil {
			return chunkResult{}, err
		}

		currentStep, err := onnx.NewTensor([]float32{float32(step)}, []int64{1})
		if err != nil {
			return chunkResult{}, newError(EncodingError, "synthesizeChunk", err)
		}

		totalStepTensor, err := onnx.NewTensor([]float32{float32(totalStep)}, []int64{1})
		if err != nil {
			return chunkResult{}, newError(EncodingError, "synthesizeChunk", err)
		}

		xTensor, err = s.Engine.VectorEstimator(ctx, onnx.VectorEstimatorInputs{
			NoisyLatent: xTensor,
			TextEmb:     textEmb,
			StyleTTL:    styleTTLTensor,
			LatentMask:  latentMaskTensor,
			TextMask:    textMaskTensor,
			CurrentStep: currentStep,
			TotalStep:   totalStepTensor,
		})
		if err != nil {
			return chunkResult{}, newError(InferenceFailure, fmt.Sprintf("vector_estimator step %d", step), err)
		}
	}

	wavTensor, err := s.Engine.Vocoder(ctx, xTensor)
	if err != nil {
		return chunkResult{}, newError(InferenceFailure, "vocoder", err)
	}

	wav, err := onnx.ExtractFloat32(wavTensor)
	if err != nil {
		return chunkResult{}, newError(ShapeMismatch, "vocoder", err)
	}

	return chunkResult{samples: wav, duration: durations[0]}, nil
}

func namedTensorToONNX(nt voice.NamedTensor) (*onnx.Tensor, error) {
	return onnx.NewTensor(nt.Data, nt.Dims)
}
