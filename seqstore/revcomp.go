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

package seqstore

// revComp8Table is the ASCII reverse-complement mapping, adapted from
// biosimd's ReverseComp8 family: A<->T, C<->G, anything unrecognised maps to
// N. Polishing inputs are plain ACGT(N) FASTA/FASTQ, so the 2-bit/4-bit BAM
// encodings that biosimd also supports are not needed here.
var revComp8Table = buildRevCompTable()

func buildRevCompTable() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = 'N'
	}
	pairs := [][2]byte{{'A', 'T'}, {'C', 'G'}, {'a', 't'}, {'c', 'g'}}
	for _, p := range pairs {
		t[p[0]] = p[1]
		t[p[1]] = p[0]
	}
	return t
}

// reverseComplement returns the reverse complement of an ASCII base string.
func reverseComplement(src []byte) []byte {
	n := len(src)
	dst := make([]byte, n)
	for i, j := 0, n-1; i < n; i, j = i+1, j-1 {
		dst[i] = revComp8Table[src[j]]
	}
	return dst
}

// reverseBytes returns src reversed (used for quality strings, which are not
// complemented, only reversed).
func reverseBytes(src []byte) []byte {
	n := len(src)
	dst := make([]byte, n)
	for i, j := 0, n-1; i < n; i, j = i+1, j-1 {
		dst[i] = src[j]
	}
	return dst
}
