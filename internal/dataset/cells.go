package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"VisualContentExtractor/internal/domain"
)

// EmptyCell is written for columns that were fetched but hold nothing.
// Unset columns are written as an empty cell.
const EmptyCell = "<empty>"

func encodeText(o domain.Opt[string]) string {
	return encodeWith(o, func(s string) string { return s })
}

func encodeInt(o domain.Opt[int]) string {
	return encodeWith(o, strconv.Itoa)
}

func encodeWith[T any](o domain.Opt[T], format func(T) string) string {
	switch {
	case o.IsUnset():
		return ""
	case o.IsEmpty():
		return EmptyCell
	}
	v, _ := o.Get()
	return format(v)
}

func decodeText(cell string) domain.Opt[string] {
	switch cell {
	case "":
		return domain.Unset[string]()
	case EmptyCell:
		return domain.Empty[string]()
	default:
		return domain.Set(cell)
	}
}

// decodeInt accepts plain integers and the float rendering ("1920.0") that
// spreadsheet tools write for integer columns with gaps.
func decodeInt(cell string) (domain.Opt[int], error) {
	switch cell {
	case "":
		return domain.Unset[int](), nil
	case EmptyCell:
		return domain.Empty[int](), nil
	}
	trimmed := strings.TrimSpace(cell)
	if n, err := strconv.Atoi(trimmed); err == nil {
		return domain.Set(n), nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || f != math.Trunc(f) {
		return domain.Opt[int]{}, fmt.Errorf("not an integer: %q", cell)
	}
	return domain.Set(int(f)), nil
}

func decodeAs[T ~string](cell string) domain.Opt[T] {
	text := decodeText(cell)
	if v, ok := text.Get(); ok {
		return domain.Set(T(v))
	}
	if text.IsEmpty() {
		return domain.Empty[T]()
	}
	return domain.Unset[T]()
}
