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

package poa

// DecodeQuality converts Phred+33 quality bytes to the [0,93] weight scale
// generate_consensus uses to weight each layer's votes.
func DecodeQuality(phred []byte) []byte {
	if phred == nil {
		return nil
	}
	out := make([]byte, len(phred))
	for i, b := range phred {
		v := int(b) - 33
		if v < 0 {
			v = 0
		} else if v > 93 {
			v = 93
		}
		out[i] = byte(v)
	}
	return out
}
