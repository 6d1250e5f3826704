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
	"strings"

	"github.com/pkg/errors"
)

// FastaReader is a SequenceReader over FASTA-formatted data, adapted from
// encoding/fasta.New: sequence names are the token up to the first space
// after '>', and multi-line sequences are concatenated.
type FastaReader struct {
	open func() (io.Reader, error)
	sc   *bufio.Scanner
	rc   io.Closer

	// name/seq hold a record still being accumulated when Parse returns
	// early on byteBudget, so the next call resumes it instead of losing it.
	name string
	seq  strings.Builder
}

// NewFastaReader constructs a FastaReader. open is called on Reset to obtain
// a fresh reader over the underlying data (so Reset can genuinely rewind a
// file-backed source).
func NewFastaReader(open func() (io.Reader, error)) *FastaReader {
	return &FastaReader{open: open}
}

// Reset implements SequenceReader.
func (f *FastaReader) Reset() error {
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
	f.name = ""
	f.seq.Reset()
	return nil
}

// Parse implements SequenceReader. byteBudget<0 means unlimited.
func (f *FastaReader) Parse(dst *[]SeqRecord, byteBudget int64) (bool, error) {
	if f.sc == nil {
		return false, errors.New("ioformats: FastaReader.Parse called before Reset")
	}
	var consumed int64
	flush := func() {
		if f.name == "" && f.seq.Len() == 0 {
			return
		}
		*dst = append(*dst, SeqRecord{Name: f.name, Bases: []byte(f.seq.String())})
		f.seq.Reset()
	}
	for f.sc.Scan() {
		line := f.sc.Bytes()
		consumed += int64(len(line)) + 1
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			flush()
			f.name = strings.SplitN(string(line[1:]), " ", 2)[0]
		} else {
			f.seq.Write(line)
		}
		if byteBudget >= 0 && consumed >= byteBudget {
			return true, nil
		}
	}
	if err := f.sc.Err(); err != nil {
		return false, errors.Wrap(err, "ioformats: reading FASTA data")
	}
	flush()
	f.name = ""
	return false, nil
}
