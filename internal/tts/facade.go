package tts

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/example/supertonic-go/internal/audio"
	"github.com/example/supertonic-go/internal/latent"
	"github.com/example/supertonic-go/internal/text"
	"github.com/example/supertonic-go/internal/voice"
)

// DefaultSilenceDurationSeconds is the gap inserted between chunk waveforms.
const DefaultSilenceDurationSeconds = 0.3

// Request is the façade's single entry point's input.
type Request struct {
	Text                   string
	VoiceStyle             voice.ID
	TotalStep              int // default 5; only >= 1 required
	Speed                  float32
	SilenceDurationSeconds float64 // 0 means DefaultSilenceDurationSeconds
}

// Result is the façade's output: the encoded WAV buffer plus the metadata
// the HTTP layer reports in response headers.
type Result struct {
	WAVBuffer       []byte
	SampleRate      int
	DurationSeconds float64
}

// Facade is the single synthesis entry point. It owns (or is given) an
// initialized Session and an RNG source for the Latent Sampler.
type Facade struct {
	session *Session
	rng     latent.Source
}

// NewFacade wraps an initialized Session. rng may be nil, in which case a
// PRNG seeded from crypto/rand is used. Draws from rng are serialized, so
// the Facade may be called from several goroutines at once.
func NewFacade(s *Session, rng latent.Source) *Facade {
	if rng == nil {
		rng = latent.NewRand(seedFromEntropy())
	}

	return &Facade{session: s, rng: &lockedSource{src: rng}}
}

// lockedSource guards a latent.Source that is not safe for concurrent use.
type lockedSource struct {
	mu  sync.Mutex
	src latent.Source
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.src.Float64()
}

// Synthesize implements §4.9: chunks text, synthesizes each chunk, inserts
// inter-chunk silence, truncates to the reported total duration, and
// encodes the result to WAV.
func (f *Facade) Synthesize(ctx context.Context, req Request) (Result, error) {
	trimmed, err := text.Normalize(req.Text)
	if err != nil {
		return Result{}, newError(InvalidInput, "Synthesize", err)
	}

	if !req.VoiceStyle.Valid() {
		return Result{}, newError(InvalidInput, "Synthesize", fmt.Errorf("unknown voiceStyle %q", req.VoiceStyle))
	}

	style, err := f.session.Voices.Resolve(req.VoiceStyle)
	if err != nil {
		return Result{}, newError(ConfigError, "Synthesize", err)
	}

	if style.StyleTTL.Dims[0] != 1 {
		return Result{}, newError(ShapeMismatch, "Synthesize", fmt.Errorf("voice style batch dim %d != 1 (single-speaker constraint)", style.StyleTTL.Dims[0]))
	}

	totalStep := req.TotalStep
	if totalStep < 1 {
		totalStep = 5
	}

	speed := req.Speed
	if speed == 0 {
		speed = 1.0
	}

	silence := req.SilenceDurationSeconds
	if silence == 0 {
		silence = DefaultSilenceDurationSeconds
	}

	chunks := text.Chunk(trimmed, text.DefaultMaxChunkLen)

	sampleRate := f.session.Config.AE.SampleRate

	var (
		wav      []float32
		duration float64
	)

	for i, chunkText := range chunks {
		result, err := synthesizeChunk(ctx, f.session, f.rng, chunkText, style, totalStep, speed)
		if err != nil {
			return Result{}, err
		}

		if i > 0 {
			silenceSamples := int(math.Floor(silence * float64(sampleRate)))
			wav = append(wav, make([]float32, silenceSamples)...)
			duration += silence
		}

		wav = append(wav, result.samples...)
		duration += float64(result.duration)
	}

	truncateLen := int(math.Floor(float64(sampleRate) * duration))
	if truncateLen < len(wav) {
		wav = wav[:truncateLen]
	}

	buf, err := audio.EncodeWAVPCM16(wav, sampleRate)
	if err != nil {
		return Result{}, newError(EncodingError, "Synthesize", err)
	}

	return Result{
		WAVBuffer:       buf,
		SampleRate:      sampleRate,
		DurationSeconds: duration,
	}, nil
}

// Close releases the underlying inference engine's resources.
func (f *Facade) Close() {
	if f.session != nil && f.session.Engine != nil {
		f.session.Engine.Close()
	}
}

func seedFromEntropy() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0x9e3779b97f4a7c15
	}

	return binary.LittleEndian.Uint64(buf[:])
}
