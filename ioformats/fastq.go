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

	"github.com/pkg/errors"
)

// FastqReader is a SequenceReader over FASTQ-formatted data, adapted from
// encoding/fastq.Scanner: four lines per record ("@id", seq, "+unk", qual).
type FastqReader struct {
	open func() (io.Reader, error)
	sc   *bufio.Scanner
	rc   io.Closer
}

// NewFastqReader constructs a FastqReader.
func NewFastqReader(open func() (io.Reader, error)) *FastqReader {
	return &FastqReader{open: open}
}

// Reset implements SequenceReader.
func (f *FastqReader) Reset() error {
	if f.rc != nil {
		f.rc.Close()
		f.rc = nil
	}
	r, err := f.open()
	if err != nil {
		return err
	}
	if rc, ok := r.(io.Closer); ok {
		f.rc = rc
	}
	f.sc = newLineReader(r)
	return nil
}

// Parse implements SequenceReader.
func (f *FastqReader) Parse(dst *[]SeqRecord, byteBudget int64) (bool, error) {
	if f.sc == nil {
		return false, errors.New("ioformats: FastqReader.Parse called before Reset")
	}
	var consumed int64
	for {
		if !f.sc.Scan() {
			break
		}
		idLine := f.sc.Bytes()
		consumed += int64(len(idLine)) + 1
		if len(idLine) == 0 || idLine[0] != '@' {
			return false, errors.Errorf("ioformats: malformed FASTQ record id %q", idLine)
		}
		name := string(idLine[1:])

		if !f.sc.Scan() {
			return false, errors.New("ioformats: truncated FASTQ file (missing sequence line)")
		}
		bases := append([]byte(nil), f.sc.Bytes()...)
		consumed += int64(len(bases)) + 1

		if !f.sc.Scan() {
			return false, errors.New("ioformats: truncated FASTQ file (missing '+' line)")
		}
		unk := f.sc.Bytes()
		consumed += int64(len(unk)) + 1
		if len(unk) == 0 || unk[0] != '+' {
			return false, errors.Errorf("ioformats: malformed FASTQ separator %q", unk)
		}

		if !f.sc.Scan() {
			return false, errors.New("ioformats: truncated FASTQ file (missing quality line)")
		}
		qual := append([]byte(nil), f.sc.Bytes()...)
		consumed += int64(len(qual)) + 1

		if len(qual) != len(bases) {
			return false, errors.Errorf("ioformats: FASTQ record %q has %d bases but %d quality values", name, len(bases), len(qual))
		}

		*dst = append(*dst, SeqRecord{Name: name, Bases: bases, Quality: qual})

		if byteBudget >= 0 && consumed >= byteBudget {
			return true, nil
		}
	}
	if err := f.sc.Err(); err != nil {
		return false, errors.Wrap(err, "ioformats: reading FASTQ data")
	}
	return false, nil
}
