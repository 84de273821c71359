package convert

import (
	"errors"
	"fmt"
	"strings"
)

// Column validation failures. These are the only errors Parse returns.
var (
	ErrInsufficientColumns = errors.New("column list needs at least two columns")
	ErrRatioSum            = errors.New("column ratios must sum to 1")
	ErrPartialRatios       = errors.New("either all columns or none must specify a ratio")
)

// ratioTolerance bounds how far the ratio sum may drift from 1
const ratioTolerance = 0.0001

// ColumnError reports a ::: columns block that failed validation
type ColumnError struct {
	Kind    error
	Line    int
	Columns int
	Ratios  []float64
}

func (e *ColumnError) Error() string {
	switch e.Kind {
	case ErrInsufficientColumns:
		return fmt.Sprintf("line %d: %v, got %d", e.Line, e.Kind, e.Columns)
	case ErrRatioSum:
		sum := 0.0
		parts := make([]string, len(e.Ratios))
		for i, r := range e.Ratios {
			sum += r
			parts[i] = fmt.Sprintf("%g", r)
		}
		return fmt.Sprintf("line %d: %v, got %s = %g", e.Line, e.Kind, strings.Join(parts, " + "), sum)
	default:
		return fmt.Sprintf("line %d: %v (%d of %d columns have one)", e.Line, e.Kind, len(e.Ratios), e.Columns)
	}
}

func (e *ColumnError) Unwrap() error { return e.Kind }
