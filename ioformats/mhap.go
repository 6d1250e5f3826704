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

// MhapReader parses MHAP overlap records:
//
//	AID BID error shared-length A5 A3 Alen B5 B3 Blen Bstrand
//
// where A is the query and B is the target in this engine's convention.
// MHAP never carries a base-level alignment, only a Jaccard-estimated error
// rate, so every record decodes to DescriptorApproximate.
type MhapReader struct {
	open func() (io.Reader, error)
	sc   *bufio.Scanner
	rc   io.Closer
}

// NewMhapReader constructs an MhapReader.
func NewMhapReader(open func() (io.Reader, error)) *MhapReader {
	return &MhapReader{open: open}
}

// Reset implements OverlapReader.
func (m *MhapReader) Reset() error {
	if m.rc != nil {
		m.rc.Close()
		m.rc = nil
	}
	r, err := m.open()
	if err != nil {
		return err
	}
	if rc, ok := r.(io.Closer); ok {
		m.rc = rc
	}
	m.sc = newLineReader(r)
	return nil
}

// Parse implements OverlapReader.
func (m *MhapReader) Parse(dst *[]OverlapRecord, byteBudget int64) (bool, error) {
	if m.sc == nil {
		return false, errors.New("ioformats: MhapReader.Parse called before Reset")
	}
	var consumed int64
	for m.sc.Scan() {
		line := m.sc.Text()
		consumed += int64(len(line)) + 1
		if line == "" {
			continue
		}
		rec, err := parseMhapLine(line)
		if err != nil {
			return false, err
		}
		*dst = append(*dst, rec)
		if byteBudget >= 0 && consumed >= byteBudget {
			return true, nil
		}
	}
	if err := m.sc.Err(); err != nil {
		return false, errors.Wrap(err, "ioformats: reading MHAP data")
	}
	return false, nil
}

func parseMhapLine(line string) (OverlapRecord, error) {
	cols := strings.Fields(line)
	if len(cols) < 11 {
		return OverlapRecord{}, errors.Errorf("ioformats: malformed MHAP line (only %d columns): %q", len(cols), line)
	}
	errRate, err := strconv.ParseFloat(cols[2], 64)
	if err != nil {
		return OverlapRecord{}, errors.Wrap(err, "ioformats: MHAP error-rate")
	}
	ints := make([]int, 7)
	for i, c := range cols[4:11] {
		// cols[4..11) = A5 A3 Alen B5 B3 Blen Bstrand
		v, err := strconv.Atoi(c)
		if err != nil {
			return OverlapRecord{}, errors.Wrapf(err, "ioformats: MHAP column %d", i+4)
		}
		ints[i] = v
	}
	a5, a3, alen, b5, b3, blen, bstrand := ints[0], ints[1], ints[2], ints[3], ints[4], ints[5], ints[6]
	strand := StrandSame
	if bstrand != 0 {
		strand = StrandReverse
	}
	return OverlapRecord{
		QName: cols[0], TName: cols[1],
		QBegin: a5, QEnd: a3, QLen: alen,
		TBegin: b5, TEnd: b3, TLen: blen,
		Strand:              strand,
		DescriptorKind:      DescriptorApproximate,
		ApproximateIdentity: 1 - errRate,
	}, nil
}
