// Package partition splits ordered work lists into contiguous chunks.
package partition

import "errors"

// ErrInvalidCount is returned when the requested partition count is not positive.
var ErrInvalidCount = errors.New("partition count must be > 0")

// Split divides items into exactly n contiguous chunks whose sizes differ by at
// most one, larger chunks first. Concatenating the chunks in order yields items.
// When len(items) < n the trailing chunks are empty. Chunks share the backing
// array of items but are capacity-clipped, so appending to one never writes
// into its neighbour.
func Split[T any](items []T, n int) ([][]T, error) {
	if n <= 0 {
		return nil, ErrInvalidCount
	}
	size, extra := len(items)/n, len(items)%n
	chunks := make([][]T, n)
	start := 0
	for i := range chunks {
		end := start + size
		if i < extra {
			end++
		}
		chunks[i] = items[start:end:end]
		start = end
	}
	return chunks, nil
}
