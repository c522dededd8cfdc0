// Package voice loads and caches per-voice conditioning tensors.
package voice

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ID is a voice identifier from the closed set {F1, F2, M1, M2}.
type ID string

const (
	F1 ID = "F1"
	F2 ID = "F2"
	M1 ID = "M1"
	M2 ID = "M2"
)

// Valid reports whether id is one of the four known voice identifiers.
func (id ID) Valid() bool {
	switch id {
	case F1, F2, M1, M2:
		return true
	default:
		return false
	}
}

// NamedTensor is a contiguous float32 buffer paired with its declared dims.
// On disk a voice_styles/<ID>.json asset stores `data` as a nested
// [dims[0]][dims[1]][dims[2]] array; UnmarshalJSON flattens it into Data in
// row-major order.
type NamedTensor struct {
	Dims []int64
	Data []float32
}

// UnmarshalJSON decodes the nested `data` array and flattens it into a
// contiguous row-major float32 buffer matching dims.
func (nt *NamedTensor) UnmarshalJSON(b []byte) error {
	var raw struct {
		Dims []int64       `json:"dims"`
		Data [][][]float64 `json:"data"`
	}

	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode tensor: %w", err)
	}

	if len(raw.Dims) != 3 {
		return fmt.Errorf("tensor dims must have 3 elements, got %d", len(raw.Dims))
	}

	flat, err := flattenNested3D(raw.Data, raw.Dims)
	if err != nil {
		return err
	}

	nt.Dims = raw.Dims
	nt.Data = flat

	return nil
}

// flattenNested3D flattens a [dims[0]][dims[1]][dims[2]] nested array into a
// contiguous row-major float32 buffer, validating its shape against dims.
func flattenNested3D(data [][][]float64, dims []int64) ([]float32, error) {
	if int64(len(data)) != dims[0] {
		return nil, fmt.Errorf("tensor outer dim %d != declared dims[0] %d", len(data), dims[0])
	}

	flat := make([]float32, 0, dims[0]*dims[1]*dims[2])

	for i, batch := range data {
		if int64(len(batch)) != dims[1] {
			return nil, fmt.Errorf("tensor[%d] dim %d != declared dims[1] %d", i, len(batch), dims[1])
		}

		for j, row := range batch {
			if int64(len(row)) != dims[2] {
				return nil, fmt.Errorf("tensor[%d][%d] dim %d != declared dims[2] %d", i, j, len(row), dims[2])
			}

			for _, v := range row {
				flat = append(flat, float32(v))
			}
		}
	}

	return flat, nil
}

// Style holds the pair of conditioning tensors for one voice.
type Style struct {
	StyleTTL NamedTensor `json:"style_ttl"`
	StyleDP  NamedTensor `json:"style_dp"`
}

// Store resolves voice identifiers to their cached Style. The cache is
// append-only: once a voice is loaded it is retained for the process
// lifetime and never invalidated.
type Store struct {
	dir string

	mu    sync.RWMutex
	cache map[ID]*Style
}

// NewStore creates a Store that resolves <ID>.json inside dir (the
// voice_styles directory).
func NewStore(dir string) *Store {
	return &Store{
		dir:   dir,
		cache: make(map[ID]*Style),
	}
}

// Resolve returns the cached Style for id, loading it from disk on first
// use. Concurrent first-use of the same id is safe: at most one load wins,
// all callers observe an equal value.
func (s *Store) Resolve(id ID) (*Style, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("unknown voice identifier %q", id)
	}

	s.mu.RLock()
	style, ok := s.cache[id]
	s.mu.RUnlock()

	if ok {
		return style, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if style, ok := s.cache[id]; ok {
		return style, nil
	}

	loaded, err := s.load(id)
	if err != nil {
		return nil, err
	}

	s.cache[id] = loaded

	return loaded, nil
}

func (s *Store) load(id ID) (*Style, error) {
	path := filepath.Join(s.dir, string(id)+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read voice style %q: %w", id, err)
	}

	var style Style
	if err := json.Unmarshal(data, &style); err != nil {
		return nil, fmt.Errorf("decode voice style %q: %w", id, err)
	}

	if len(style.StyleTTL.Dims) == 0 || len(style.StyleDP.Dims) == 0 {
		return nil, fmt.Errorf("voice style %q missing tensor dims", id)
	}

	return &style, nil
}
