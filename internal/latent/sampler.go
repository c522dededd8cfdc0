// Package latent draws the initial noisy latent tensor for the denoising
// loop and the latent-length mask derived from predicted durations.
package latent

import (
	"math"
	"math/rand/v2"

	"github.com/example/supertonic-go/internal/mask"
)

// boxMullerEpsilon floors u1 away from zero so log(u1) never diverges.
const boxMullerEpsilon = 1e-4

// Source supplies uniform [0,1) draws. *rand.Rand satisfies this; tests can
// substitute a deterministic stub.
type Source interface {
	Float64() float64
}

// Sample holds the sampler's output: the noisy latent tensor, flattened
// row-major as [B, latentDimV, latentLen], plus its latent-length mask.
type Sample struct {
	X          []float32
	Shape      []int64 // [B, latentDimV, latentLen]
	LatentMask [][][]float32
	Lengths    []int
}

// Params bundles the config fields the sampler needs (mirrors tts.Config's
// ae/ttl sections).
type Params struct {
	SampleRate          int
	BaseChunkSize       int
	ChunkCompressFactor int
	LatentDim           int
}

// Draw computes wav_len_max from durations, derives latent shape and
// latent_lengths per §4.5, fills x_t with independent Box-Muller draws from
// rng, and zeroes entries outside the latent mask.
func Draw(rng Source, durations []float32, p Params) Sample {
	chunkSize := p.BaseChunkSize * p.ChunkCompressFactor
	latentDimV := p.LatentDim * p.ChunkCompressFactor

	wavLengths := make([]int, len(durations))
	wavLenMax := 0

	for i, d := range durations {
		wavLengths[i] = int(math.Floor(float64(d) * float64(p.SampleRate)))
		if wavLengths[i] > wavLenMax {
			wavLenMax = wavLengths[i]
		}
	}

	latentLen := ceilDiv(wavLenMax, chunkSize)

	latentLengths := make([]int, len(durations))
	for i, wl := range wavLengths {
		latentLengths[i] = ceilDiv(wl, chunkSize)
	}

	latentMask := mask.LengthToMask(latentLengths, latentLen)

	b := len(durations)
	x := make([]float32, b*latentDimV*latentLen)

	for i := 0; i < b; i++ {
		valid := latentMask[i][0]

		for d := 0; d < latentDimV; d++ {
			base := (i*latentDimV + d) * latentLen

			for t := 0; t < latentLen; t++ {
				if valid[t] == 0 {
					x[base+t] = 0
					continue
				}

				x[base+t] = float32(boxMuller(rng))
			}
		}
	}

	return Sample{
		X:          x,
		Shape:      []int64{int64(b), int64(latentDimV), int64(latentLen)},
		LatentMask: latentMask,
		Lengths:    latentLengths,
	}
}

// boxMuller draws one standard normal sample: u1 is floored at
// boxMullerEpsilon so sqrt(-2*ln(u1)) never sees log(0).
func boxMuller(rng Source) float64 {
	u1 := math.Max(boxMullerEpsilon, rng.Float64())
	u2 := rng.Float64()

	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}

	return (a + b - 1) / b
}

// NewRand returns a *rand.Rand seeded deterministically, satisfying Source.
// Production code should seed it from a high-entropy source; tests pass a
// fixed seed for reproducibility.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}
