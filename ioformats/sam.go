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

package ioformats

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// SamReader parses SAM records as overlaps: the query is the SAM record's
// QNAME, the target is its RNAME, and the CIGAR string is the alignment
// descriptor. Unmapped records (RNAME "*" or FLAG bit 0x4) and header lines
// ("@...") are skipped.
type SamReader struct {
	open    func() (io.Reader, error)
	sc      *bufio.Scanner
	rc      io.Closer
	refLens map[string]int // from @SQ header lines, SN -> LN
}

// NewSamReader constructs a SamReader.
func NewSamReader(open func() (io.Reader, error)) *SamReader {
	return &SamReader{open: open}
}

// Reset implements OverlapReader.
func (s *SamReader) Reset() error {
	if s.rc != nil {
		s.rc.Close()
		s.rc = nil
	}
	r, err := s.open()
	if err != nil {
		return err
	}
	if rc, ok := r.(io.Closer); ok {
		s.rc = rc
	}
	s.sc = newLineReader(r)
	s.refLens = make(map[string]int)
	return nil
}

// Parse implements OverlapReader.
func (s *SamReader) Parse(dst *[]OverlapRecord, byteBudget int64) (bool, error) {
	if s.sc == nil {
		return false, errors.New("ioformats: SamReader.Parse called before Reset")
	}
	var consumed int64
	for s.sc.Scan() {
		line := s.sc.Text()
		consumed += int64(len(line)) + 1
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "@") {
			parseSamHeaderLine(line, s.refLens)
			continue
		}
		rec, skip, err := parseSamLine(line, s.refLens)
		if err != nil {
			return false, err
		}
		if !skip {
			*dst = append(*dst, rec)
		}
		if byteBudget >= 0 && consumed >= byteBudget {
			return true, nil
		}
	}
	if err := s.sc.Err(); err != nil {
		return false, errors.Wrap(err, "ioformats: reading SAM data")
	}
	return false, nil
}

const (
	samFlagReverse  = 0x10
	samFlagUnmapped = 0x4
)

// parseSamHeaderLine records an @SQ line's SN/LN fields into refLens, the
// reference-length table per-record TLen needs (SAM carries it only in the
// header, not per alignment line).
func parseSamHeaderLine(line string, refLens map[string]int) {
	if !strings.HasPrefix(line, "@SQ\t") {
		return
	}
	var name string
	var length int
	haveName, haveLength := false, false
	for _, field := range strings.Split(line, "\t")[1:] {
		switch {
		case strings.HasPrefix(field, "SN:"):
			name, haveName = field[len("SN:"):], true
		case strings.HasPrefix(field, "LN:"):
			if n, err := strconv.Atoi(field[len("LN:"):]); err == nil {
				length, haveLength = n, true
			}
		}
	}
	if haveName && haveLength {
		refLens[name] = length
	}
}

func parseSamLine(line string, refLens map[string]int) (rec OverlapRecord, skip bool, err error) {
	cols := strings.Split(line, "\t")
	if len(cols) < 11 {
		return OverlapRecord{}, false, errors.Errorf("ioformats: malformed SAM line (only %d columns): %q", len(cols), line)
	}
	flag, err := strconv.Atoi(cols[1])
	if err != nil {
		return OverlapRecord{}, false, errors.Wrap(err, "ioformats: SAM FLAG")
	}
	rname := cols[2]
	if rname == "*" || flag&samFlagUnmapped != 0 {
		return OverlapRecord{}, true, nil
	}
	pos, err := strconv.Atoi(cols[3])
	if err != nil {
		return OverlapRecord{}, false, errors.Wrap(err, "ioformats: SAM POS")
	}
	cigar := cols[5]
	if cigar == "*" {
		return OverlapRecord{}, true, nil
	}
	refSpan, queryBases := cigarSpans(cigar)
	strand := StrandSame
	if flag&samFlagReverse != 0 {
		strand = StrandReverse
	}
	tBegin, tEnd := pos-1, pos-1+refSpan
	tLen, known := refLens[rname]
	if !known || tLen < tEnd {
		tLen = tEnd
	}
	rec = OverlapRecord{
		QName: cols[0], TName: rname,
		QBegin: 0, QEnd: queryBases, QLen: queryBases,
		TBegin: tBegin, TEnd: tEnd, TLen: tLen,
		Strand:         strand,
		DescriptorKind: DescriptorCIGAR,
		Descriptor:     cigar,
	}
	return rec, false, nil
}

// cigarSpans returns the reference-consuming length and query-consuming
// length of a CIGAR string.
func cigarSpans(cigar string) (refSpan, querySpan int) {
	n := 0
	for i := 0; i < len(cigar); i++ {
		c := cigar[i]
		if c >= '0' && c <= '9' {
			n = n*10 + int(c-'0')
			continue
		}
		switch c {
		case 'M', '=', 'X':
			refSpan += n
			querySpan += n
		case 'D', 'N':
			refSpan += n
		case 'I', 'S':
			querySpan += n
		}
		n = 0
	}
	return refSpan, querySpan
}
