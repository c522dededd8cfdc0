package text

import (
	"encoding/json"
	"fmt"
	"os"
)

// UnknownTokenID is the sentinel token emitted for code points outside the
// indexer table's range.
const UnknownTokenID int64 = -1

// Indexer maps normalized text to integer token IDs using a fixed
// per-codepoint lookup table (indexer_table[cp] for cp < len(table), else
// UnknownTokenID).
type Indexer struct {
	table []int64
}

// LoadIndexer reads a flat JSON array of int64 from path and builds an
// Indexer from it.
func LoadIndexer(path string) (*Indexer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read codepoint indexer table: %w", err)
	}

	var table []int64
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("decode codepoint indexer table: %w", err)
	}

	return NewIndexer(table), nil
}

// NewIndexer builds an Indexer directly from an in-memory table.
func NewIndexer(table []int64) *Indexer {
	return &Indexer{table: table}
}

// Index maps a batch of already-normalized texts to token ID rows and a
// validity mask. Each text is canonicalized to NFKC, then every code point
// is mapped through the table (or UnknownTokenID if out of range). Rows are
// right-padded with 0 to the longest row in the batch; mask[i][0] carries
// len(text_i) leading ones.
func (ix *Indexer) Index(texts []string) (tokenIDs [][]int64, mask [][][]float32) {
	rows := make([][]int64, len(texts))
	lengths := make([]int, len(texts))

	maxLen := 0

	for i, t := range texts {
		normalized := NFKC(t)

		row := make([]int64, 0, len(normalized))
		for _, cp := range normalized {
			row = append(row, ix.lookup(cp))
		}

		rows[i] = row
		lengths[i] = len(row)

		if len(row) > maxLen {
			maxLen = len(row)
		}
	}

	tokenIDs = make([][]int64, len(texts))
	mask = make([][][]float32, len(texts))

	for i, row := range rows {
		padded := make([]int64, maxLen)
		copy(padded, row)
		tokenIDs[i] = padded

		maskRow := make([]float32, maxLen)
		for j := 0; j < lengths[i] && j < maxLen; j++ {
			maskRow[j] = 1.0
		}

		mask[i] = [][]float32{maskRow}
	}

	return tokenIDs, mask
}

func (ix *Indexer) lookup(cp rune) int64 {
	idx := int(cp)
	if idx < 0 || idx >= len(ix.table) {
		return UnknownTokenID
	}

	return ix.table[idx]
}
