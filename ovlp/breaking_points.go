// Copyright 2026 The Seqpolish Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ovlp

import "github.com/pkg/errors"

// alignOp is one run-length-encoded alignment operation: 'M' consumes one
// target base and one query base per unit, 'D' consumes a target base only,
// 'I' consumes a query base only.
type alignOp struct {
	op    byte
	count int
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// parseOps accepts either a CIGAR string ("10M2D5M3I") or a bare
// match/mismatch string (one symbol per alignment column: '=', 'X', 'M' for
// match/mismatch columns, 'I' for query-only, 'D' for target-only).
func parseOps(descriptor string) ([]alignOp, error) {
	if descriptor == "" {
		return nil, errors.New("ovlp: empty alignment descriptor")
	}
	if isDigit(descriptor[0]) {
		return parseCIGAR(descriptor)
	}
	return parseMatchString(descriptor)
}

func parseCIGAR(s string) ([]alignOp, error) {
	var ops []alignOp
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isDigit(c) {
			n = n*10 + int(c-'0')
			continue
		}
		switch c {
		case 'M', '=', 'X':
			ops = append(ops, alignOp{'M', n})
		case 'I', 'S':
			ops = append(ops, alignOp{'I', n})
		case 'D', 'N':
			ops = append(ops, alignOp{'D', n})
		case 'H', 'P':
			// clips/padding: consume neither coordinate
		default:
			return nil, errors.Errorf("ovlp: unsupported CIGAR operation %q", c)
		}
		n = 0
	}
	return ops, nil
}

func parseMatchString(s string) ([]alignOp, error) {
	ops := make([]alignOp, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '=', 'X', 'M':
			ops = append(ops, alignOp{'M', 1})
		case 'I':
			ops = append(ops, alignOp{'I', 1})
		case 'D':
			ops = append(ops, alignOp{'D', 1})
		default:
			return nil, errors.Errorf("ovlp: unsupported match-string symbol %q at position %d", s[i], i)
		}
	}
	return ops, nil
}

// queryPosTable returns, for each target offset p in [0, tEnd-tBegin], the
// absolute query coordinate aligned just before target base tBegin+p is
// consumed. tbl[0] == queryStart; insertions inflate later entries without
// advancing the target index; deletions repeat the current query coordinate.
func queryPosTable(ops []alignOp, tBegin, tEnd, queryStart int) []int {
	tbl := make([]int, tEnd-tBegin+1)
	t, q, idx := tBegin, queryStart, 0
	tbl[0] = q
	for _, op := range ops {
		if t >= tEnd {
			break
		}
		switch op.op {
		case 'I':
			q += op.count
		case 'D':
			for c := 0; c < op.count && t < tEnd; c++ {
				t++
				idx++
				tbl[idx] = q
			}
		case 'M':
			for c := 0; c < op.count && t < tEnd; c++ {
				t++
				q++
				idx++
				tbl[idx] = q
			}
		}
	}
	for idx < len(tbl)-1 {
		idx++
		tbl[idx] = q
	}
	return tbl
}

func lerp(t, tBegin, tEnd, qBegin, qEnd int) int {
	if tEnd == tBegin {
		return qBegin
	}
	return qBegin + (t-tBegin)*(qEnd-qBegin)/(tEnd-tBegin)
}

// FindBreakingPoints walks o's alignment descriptor and attaches the
// (target_pos, query_pos) pairs that delimit, for every target window the
// overlap touches, the layer segment belonging to that window. When margin
// (derived from overlapFraction*windowLength) is positive, adjacent windows'
// segments are widened to overlap by margin on each side, so a caller that
// needs to disambiguate a layer sitting in the shared zone has both
// candidate windows' pairs to choose from.
//
// Segments are half-open: window k covers target bases [k*windowLength,
// (k+1)*windowLength), so a boundary coordinate closes the earlier window's
// segment and an overlap whose end falls exactly on a boundary produces no
// segment in the later window.
func FindBreakingPoints(o *Overlap, windowLength int, overlapFraction float64) error {
	if windowLength <= 0 {
		return errors.New("ovlp: windowLength must be positive")
	}
	if err := o.IsValid(); err != nil {
		return err
	}

	queryStart := o.QBegin
	querySpan := o.QEnd - o.QBegin
	if o.Strand == StrandReverse {
		queryStart = o.QLen - o.QEnd
	}
	margin := int(overlapFraction * float64(windowLength))

	var queryAt func(t int) int
	switch o.DescriptorKind {
	case DescriptorExact:
		ops, err := parseOps(o.Descriptor)
		if err != nil {
			return err
		}
		tbl := queryPosTable(ops, o.TBegin, o.TEnd, queryStart)
		queryAt = func(t int) int { return tbl[t-o.TBegin] }
	case DescriptorApproximate:
		queryAt = func(t int) int {
			return lerp(t, o.TBegin, o.TEnd, queryStart, queryStart+querySpan)
		}
	default:
		return errors.Errorf("ovlp: unknown descriptor kind %d", o.DescriptorKind)
	}

	first := o.TBegin / windowLength
	last := (o.TEnd - 1) / windowLength

	var pairs []BreakingPoint
	for k := first; k <= last; k++ {
		segStart := k*windowLength - margin
		if segStart < o.TBegin {
			segStart = o.TBegin
		}
		segEnd := (k+1)*windowLength + margin
		if segEnd > o.TEnd {
			segEnd = o.TEnd
		}
		if segEnd <= segStart {
			continue
		}
		pairs = append(pairs,
			BreakingPoint{TargetPos: segStart, QueryPos: queryAt(segStart)},
			BreakingPoint{TargetPos: segEnd, QueryPos: queryAt(segEnd)},
		)
	}

	o.breakingPoints = pairs
	return nil
}
