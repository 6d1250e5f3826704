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
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

// openerFor returns a function that opens path fresh each time it is
// called (suitable for SequenceReader/OverlapReader's Reset), transparently
// decompressing it if the path has (after suffix classification) a ".gz"
// extension. It uses github.com/grailbio/base/file so any backend file.Open
// supports (local, or a remote blob store) works here too.
func openerFor(ctx context.Context, path string, gzipped bool) func() (io.Reader, error) {
	return func() (io.Reader, error) {
		f, err := file.Open(ctx, path)
		if err != nil {
			return nil, errors.Wrapf(err, "ioformats: opening %s", path)
		}
		r := f.Reader(ctx)
		dr, err := openDecompressed(r, gzipped)
		if err != nil {
			return nil, err
		}
		return &closeOnEOFReader{r: dr, f: f, ctx: ctx}, nil
	}
}

// closeOnEOFReader wraps the underlying file.File so readers that only see
// an io.Reader can still release the file handle once they Close it (fasta/
// fastq/overlap readers all type-assert io.Closer after opening).
type closeOnEOFReader struct {
	r   io.Reader
	f   file.File
	ctx context.Context
}

func (c *closeOnEOFReader) Read(p []byte) (int, error) { return c.r.Read(p) }
func (c *closeOnEOFReader) Close() error                { return c.f.Close(c.ctx) }

// OpenSequenceReader dispatches on path's suffix per spec: .fasta/.fa/.fna
// select FASTA, .fastq/.fq select FASTQ, each optionally gzip-compressed.
func OpenSequenceReader(ctx context.Context, path string) (SequenceReader, error) {
	stripped, gz := IsGzipPath(path)
	open := openerFor(ctx, path, gz)
	switch {
	case hasAnySuffix(stripped, ".fasta", ".fa", ".fna"):
		return NewFastaReader(open), nil
	case hasAnySuffix(stripped, ".fastq", ".fq"):
		return NewFastqReader(open), nil
	default:
		return nil, errors.Errorf("ioformats: %s has unsupported sequence format extension (valid: .fasta, .fa, .fna, .fastq, .fq, optionally .gz)", path)
	}
}

// OpenOverlapReader dispatches on path's suffix per spec: .mhap selects
// MHAP, .paf selects PAF, .sam selects SAM, each optionally gzip-compressed.
func OpenOverlapReader(ctx context.Context, path string) (OverlapReader, error) {
	stripped, gz := IsGzipPath(path)
	open := openerFor(ctx, path, gz)
	switch {
	case hasAnySuffix(stripped, ".mhap"):
		return NewMhapReader(open), nil
	case hasAnySuffix(stripped, ".paf"):
		return NewPafReader(open), nil
	case hasAnySuffix(stripped, ".sam"):
		return NewSamReader(open), nil
	default:
		return nil, errors.Errorf("ioformats: %s has unsupported overlap format extension (valid: .mhap, .paf, .sam, optionally .gz)", path)
	}
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
