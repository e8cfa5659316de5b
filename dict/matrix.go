package dict

import (
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/mecab-bridge/errors"
)

// Matrix is the connection-cost table of matrix.def.
// Cost(rattr, lattr) is stored at rattr + LSize*lattr.
type Matrix struct {
	costs []int16
	LSize int
	RSize int
}

// NewMatrix returns a zero-cost matrix.
func NewMatrix(lsize, rsize int) *Matrix {
	return &Matrix{costs: make([]int16, lsize*rsize), LSize: lsize, RSize: rsize}
}

// LoadMatrix parses a matrix.def file: a "lsize rsize" header followed by
// "right-id left-id cost" rows. Unlisted pairs cost 0.
func LoadMatrix(path, charset string) (*Matrix, error) {
	var m *Matrix
	err := eachLine(path, charset, func(line string, n int) error {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil
		}
		loc := []string{path, strconv.Itoa(n)}
		if m == nil {
			if len(fields) != 2 {
				return errors.InvalidData(errors.PhaseLoad, loc, "header must be \"lsize rsize\"")
			}
			lsize, err1 := strconv.Atoi(fields[0])
			rsize, err2 := strconv.Atoi(fields[1])
			if err1 != nil || err2 != nil || lsize <= 0 || rsize <= 0 || lsize > math.MaxUint16+1 || rsize > math.MaxUint16+1 {
				return errors.InvalidData(errors.PhaseLoad, loc, "invalid matrix size")
			}
			m = NewMatrix(lsize, rsize)
			return nil
		}
		if len(fields) != 3 {
			return errors.InvalidData(errors.PhaseLoad, loc, "row must be \"right-id left-id cost\"")
		}
		r, err1 := strconv.Atoi(fields[0])
		l, err2 := strconv.Atoi(fields[1])
		c, err3 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return errors.InvalidData(errors.PhaseLoad, loc, "non-numeric row")
		}
		if r < 0 || r >= m.LSize || l < 0 || l >= m.RSize {
			return errors.InvalidData(errors.PhaseLoad, loc, "context id out of range")
		}
		if c < math.MinInt16 || c > math.MaxInt16 {
			return errors.InvalidData(errors.PhaseLoad, loc, "cost out of range")
		}
		m.costs[r+m.LSize*l] = int16(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.InvalidData(errors.PhaseLoad, []string{path}, "empty matrix")
	}
	return m, nil
}

// Cost returns the connection cost from a node with right context rattr to
// a node with left context lattr.
func (m *Matrix) Cost(rattr, lattr uint16) (int, error) {
	if int(rattr) >= m.LSize {
		return 0, errors.OutOfRange(errors.PhaseLookup, "right attribute", rattr, m.LSize)
	}
	if int(lattr) >= m.RSize {
		return 0, errors.OutOfRange(errors.PhaseLookup, "left attribute", lattr, m.RSize)
	}
	return int(m.costs[int(rattr)+m.LSize*int(lattr)]), nil
}

// Set overrides one cost.
func (m *Matrix) Set(rattr, lattr uint16, cost int16) {
	m.costs[int(rattr)+m.LSize*int(lattr)] = cost
}
