// Package mask builds batched validity masks for variable-length sequences.
package mask

// LengthToMask produces a [B][1][maxLen] float32 mask where row i has
// min(lengths[i], maxLen) leading ones and the rest zeros.
func LengthToMask(lengths []int, maxLen int) [][][]float32 {
	out := make([][][]float32, len(lengths))

	for i, length := range lengths {
		row := make([]float32, maxLen)

		n := length
		if n > maxLen {
			n = maxLen
		}

		for j := 0; j < n; j++ {
			row[j] = 1.0
		}

		out[i] = [][]float32{row}
	}

	return out
}

// CountOnes returns the number of 1.0 entries in a single mask row.
func CountOnes(row []float32) int {
	n := 0
	for _, v := range row {
		if v == 1.0 {
			n++
		}
	}

	return n
}
