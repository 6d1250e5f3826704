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

// Package ioformats implements the parser contract described by the
// polishing engine's external interfaces: each input role (query sequences,
// target sequences, overlaps) is read through a Reset/Parse interface that
// lets the caller pull records in bounded-size chunks. Concrete readers
// cover FASTA/FASTQ (sequences) and MHAP/PAF/SAM (overlaps), with
// transparent ".gz" decompression, in the style of encoding/fasta and
// encoding/fastq.
package ioformats

import (
	"bufio"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// SeqRecord is one parsed sequence record.
type SeqRecord struct {
	Name    string
	Bases   []byte
	Quality []byte // Phred+33, nil if unavailable
}

// SequenceReader is the parser contract for the query/target roles: Reset
// rewinds to the beginning of the stream, and Parse appends records onto dst
// until at least byteBudget bytes of input lines (headers included) have been
// consumed, reporting whether more data remains. A negative byteBudget means
// "parse everything".
type SequenceReader interface {
	Reset() error
	Parse(dst *[]SeqRecord, byteBudget int64) (more bool, err error)
}

// Strand identifies which orientation an overlap aligns its query on.
type Strand int

const (
	// StrandSame means the query aligns in its original orientation.
	StrandSame Strand = iota
	// StrandReverse means the query aligns as its reverse complement.
	StrandReverse
)

// DescriptorKind distinguishes overlap records that carry a real alignment
// (CIGAR string, or a match/mismatch string) from ones that only carry an
// approximate span (MHAP's Jaccard-estimate records).
type DescriptorKind int

const (
	// DescriptorCIGAR is a SAM-style CIGAR string.
	DescriptorCIGAR DescriptorKind = iota
	// DescriptorMatchString is a per-base match/mismatch string (one byte
	// per aligned column; '=' / 'X' / 'I' / 'D' conventions).
	DescriptorMatchString
	// DescriptorApproximate means no per-base alignment is available; only
	// the overlap's coordinate span and an approximate error estimate are
	// known (typical of MHAP output).
	DescriptorApproximate
)

// OverlapRecord is one parsed pairwise overlap, prior to name-to-id
// resolution (Transmute in package ovlp performs that step).
type OverlapRecord struct {
	QName, TName       string
	QBegin, QEnd       int
	TBegin, TEnd       int
	QLen, TLen         int
	Strand             Strand
	DescriptorKind     DescriptorKind
	Descriptor         string // CIGAR or match string; empty for Approximate
	ApproximateIdentity float64 // only meaningful for DescriptorApproximate
}

// OverlapReader is the parser contract for the overlaps role.
type OverlapReader interface {
	Reset() error
	Parse(dst *[]OverlapRecord, byteBudget int64) (more bool, err error)
}

// openDecompressed wraps r with a gzip reader if gzipped is true.
func openDecompressed(r io.Reader, gzipped bool) (io.Reader, error) {
	if !gzipped {
		return r, nil
	}
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "ioformats: opening gzip stream")
	}
	return gz, nil
}

// hasSuffix reports whether name ends with suffix, case-sensitively. It does
// not strip ".gz" itself; IsGzipPath does that before format suffixes are
// compared.
func hasSuffix(name, suffix string) bool {
	return strings.HasSuffix(name, suffix)
}

// IsGzipPath reports whether path names a gzip-compressed file by suffix,
// and returns the path with ".gz" stripped so the remaining suffix can be
// classified normally.
func IsGzipPath(path string) (stripped string, gzipped bool) {
	if hasSuffix(path, ".gz") {
		return path[:len(path)-3], true
	}
	return path, false
}

// newLineReader is a small helper shared by the line-oriented formats
// (FASTA/FASTQ/PAF/MHAP/SAM): a bufio.Scanner sized generously enough for
// long-read sequences.
func newLineReader(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<28)
	return sc
}
