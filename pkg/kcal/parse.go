package kcal

import (
	"errors"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// scanInts reads the first n whitespace separated decimal integers of line.
// Anything after the n-th field is ignored. A missing or non-numeric field
// makes the whole line malformed; no field is defaulted. A field that does
// not fit in bitSize bits saturates to the nearest bound, which every caller
// then treats as out of range.
func scanInts(line string, n int, bitSize int) ([]int64, error) {
	if len(line) == 0 {
		return nil, ErrEmptyInput
	}

	fields := strings.Fields(line)
	if len(fields) < n {
		return nil, pkgerrors.Wrapf(ErrMalformed, "want %d fields, got %d", n, len(fields))
	}

	ret := make([]int64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseInt(fields[i], 10, bitSize)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, pkgerrors.Wrapf(ErrMalformed, "field %d %q is not an integer", i+1, fields[i])
		}
		ret[i] = v
	}

	return ret, nil
}
