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

// ErrorRate estimates o's alignment error in [0,1], the "error" quantity
// §3 derives from the overlap's descriptor. For an approximate (MHAP-style)
// overlap it is simply 1 - Identity. For an exact descriptor it is the
// fraction of aligned columns that are not a plain match: indel and
// soft-clipped bases always count, and a mismatch column counts wherever the
// descriptor marks it as one ('X', in a CIGAR or a match string); a CIGAR
// 'M' carries no match/mismatch distinction and counts as a match.
func ErrorRate(o *Overlap) (float64, error) {
	if o.DescriptorKind == DescriptorApproximate {
		return 1 - o.Identity, nil
	}
	bad, total, err := scanErrorCounts(o.Descriptor)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	return float64(bad) / float64(total), nil
}

func scanErrorCounts(descriptor string) (bad, total int, err error) {
	if descriptor == "" {
		return 0, 0, errors.New("ovlp: empty alignment descriptor")
	}
	if isDigit(descriptor[0]) {
		return scanCIGARErrorCounts(descriptor)
	}
	return scanMatchStringErrorCounts(descriptor)
}

func scanCIGARErrorCounts(s string) (bad, total int, err error) {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isDigit(c) {
			n = n*10 + int(c-'0')
			continue
		}
		switch c {
		case 'M', '=':
			total += n
		case 'X':
			total += n
			bad += n
		case 'I', 'S', 'D', 'N':
			total += n
			bad += n
		case 'H', 'P':
			// clips/padding: no aligned columns contributed
		default:
			return 0, 0, errors.Errorf("ovlp: unsupported CIGAR operation %q", c)
		}
		n = 0
	}
	return bad, total, nil
}

func scanMatchStringErrorCounts(s string) (bad, total int, err error) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '=':
			total++
		case 'X', 'I', 'D':
			total++
			bad++
		default:
			return 0, 0, errors.Errorf("ovlp: unsupported match-string symbol %q at position %d", s[i], i)
		}
	}
	return bad, total, nil
}
