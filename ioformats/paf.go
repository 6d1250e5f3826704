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

// PafReader parses minimap2-style PAF overlap records. A PAF line's
// mandatory columns are:
//
//	qname qlen qstart qend strand tname tlen tstart tend nmatch alnlen mapq
//
// followed by optional SAM-style tags; this reader looks for a "cg:Z:<cigar>"
// tag to recover a real alignment descriptor, and otherwise falls back to an
// approximate descriptor derived from nmatch/alnlen.
type PafReader struct {
	open func() (io.Reader, error)
	sc   *bufio.Scanner
	rc   io.Closer
}

// NewPafReader constructs a PafReader.
func NewPafReader(open func() (io.Reader, error)) *PafReader {
	return &PafReader{open: open}
}

// Reset implements OverlapReader.
func (p *PafReader) Reset() error {
	if p.rc != nil {
		p.rc.Close()
		p.rc = nil
	}
	r, err := p.open()
	if err != nil {
		return err
	}
	if rc, ok := r.(io.Closer); ok {
		p.rc = rc
	}
	p.sc = newLineReader(r)
	return nil
}

// Parse implements OverlapReader.
func (p *PafReader) Parse(dst *[]OverlapRecord, byteBudget int64) (bool, error) {
	if p.sc == nil {
		return false, errors.New("ioformats: PafReader.Parse called before Reset")
	}
	var consumed int64
	for p.sc.Scan() {
		line := p.sc.Text()
		consumed += int64(len(line)) + 1
		if line == "" {
			continue
		}
		rec, err := parsePafLine(line)
		if err != nil {
			return false, err
		}
		*dst = append(*dst, rec)
		if byteBudget >= 0 && consumed >= byteBudget {
			return true, nil
		}
	}
	if err := p.sc.Err(); err != nil {
		return false, errors.Wrap(err, "ioformats: reading PAF data")
	}
	return false, nil
}

func parsePafLine(line string) (OverlapRecord, error) {
	cols := strings.Split(line, "\t")
	if len(cols) < 12 {
		return OverlapRecord{}, errors.Errorf("ioformats: malformed PAF line (only %d columns): %q", len(cols), line)
	}
	qlen, err := strconv.Atoi(cols[1])
	if err != nil {
		return OverlapRecord{}, errors.Wrap(err, "ioformats: PAF qlen")
	}
	qstart, err := strconv.Atoi(cols[2])
	if err != nil {
		return OverlapRecord{}, errors.Wrap(err, "ioformats: PAF qstart")
	}
	qend, err := strconv.Atoi(cols[3])
	if err != nil {
		return OverlapRecord{}, errors.Wrap(err, "ioformats: PAF qend")
	}
	strand := StrandSame
	if cols[4] == "-" {
		strand = StrandReverse
	}
	tlen, err := strconv.Atoi(cols[6])
	if err != nil {
		return OverlapRecord{}, errors.Wrap(err, "ioformats: PAF tlen")
	}
	tstart, err := strconv.Atoi(cols[7])
	if err != nil {
		return OverlapRecord{}, errors.Wrap(err, "ioformats: PAF tstart")
	}
	tend, err := strconv.Atoi(cols[8])
	if err != nil {
		return OverlapRecord{}, errors.Wrap(err, "ioformats: PAF tend")
	}
	nmatch, err := strconv.Atoi(cols[9])
	if err != nil {
		return OverlapRecord{}, errors.Wrap(err, "ioformats: PAF nmatch")
	}
	alnlen, err := strconv.Atoi(cols[10])
	if err != nil {
		return OverlapRecord{}, errors.Wrap(err, "ioformats: PAF alnlen")
	}

	rec := OverlapRecord{
		QName: cols[0], TName: cols[5],
		QBegin: qstart, QEnd: qend, QLen: qlen,
		TBegin: tstart, TEnd: tend, TLen: tlen,
		Strand: strand,
	}
	for _, tag := range cols[12:] {
		if strings.HasPrefix(tag, "cg:Z:") {
			rec.DescriptorKind = DescriptorCIGAR
			rec.Descriptor = tag[len("cg:Z:"):]
			return rec, nil
		}
	}
	rec.DescriptorKind = DescriptorApproximate
	if alnlen > 0 {
		rec.ApproximateIdentity = float64(nmatch) / float64(alnlen)
	}
	return rec, nil
}
