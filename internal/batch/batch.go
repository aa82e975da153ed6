// Package batch splits ordered key lists into bounded request groups and
// drives sequential calls over them.
package batch

import (
	"context"
	"fmt"
	"iter"
)

// MaxSize is the largest number of titles the metadata API accepts per call.
const MaxSize = 50

// Clamp bounds a configured batch size to (0, MaxSize].
func Clamp(size int) int {
	if size <= 0 || size > MaxSize {
		return MaxSize
	}
	return size
}

// Count returns how many batches Partition yields for n keys.
func Count(n, size int) int {
	size = Clamp(size)
	return (n + size - 1) / size
}

// Partition lazily yields contiguous slices of at most size keys, in order.
func Partition(keys []string, size int) iter.Seq[[]string] {
	size = Clamp(size)
	return func(yield func([]string) bool) {
		for start := 0; start < len(keys); start += size {
			end := min(start+size, len(keys))
			if !yield(keys[start:end:end]) {
				return
			}
		}
	}
}

// Each runs fn over every batch sequentially and stops at the first error.
func Each(ctx context.Context, keys []string, size int, fn func(ctx context.Context, batch []string) error) error {
	for chunk := range Partition(keys, size) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
}

// PageFunc fetches the page with the given 1-based number.
type PageFunc[T any] func(ctx context.Context, number int) (Page[T], error)

// Paginate requests page 1 to learn the page count, then walks the remaining
// pages in order. Rows are returned only when every page succeeded.
func Paginate[T any](ctx context.Context, fetch PageFunc[T], onPage func(number, total int)) ([]T, error) {
	var collected []T
	for number := 1; ; number++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := fetch(ctx, number)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", number, err)
		}
		collected = append(collected, page.Items...)
		if onPage != nil {
			onPage(number, page.TotalPages)
		}

		observed := page.Number
		if observed == 0 {
			observed = number
		}
		if observed >= page.TotalPages {
			return collected, nil
		}
	}
}
