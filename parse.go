// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package commonmark

import "bytes"

// Parse runs all three passes of the algorithm over source and returns the
// resulting document tree: link reference definitions are collected first
// (spec §4.1), then the block structure is built around them (spec §4.2),
// then every paragraph's and heading's raw text is resolved into inline
// content (spec §6).
func Parse(source []byte) *Document {
	lines := splitLines(source)
	refs := collectReferences(lines)
	root := analyzeBlocks(lines, refs)
	resolveInlines(root, refs)
	return &Document{Block: *root}
}

// splitLines breaks source into lines with their line-ending bytes
// stripped, treating "\r\n", "\r", and "\n" all as line endings, and
// replaces any NUL byte with the Unicode replacement character as spec §2
// requires of every CommonMark implementation's preprocessing step.
func splitLines(source []byte) []string {
	if bytes.IndexByte(source, 0) >= 0 {
		source = bytes.ReplaceAll(source, []byte{0}, []byte("�"))
	}
	var lines []string
	for len(source) > 0 {
		i := bytes.IndexAny(source, "\r\n")
		if i < 0 {
			lines = append(lines, string(source))
			break
		}
		lines = append(lines, string(source[:i]))
		if source[i] == '\r' && i+1 < len(source) && source[i+1] == '\n' {
			i++
		}
		source = source[i+1:]
	}
	return lines
}

// resolveInlines walks the block tree Pass 2 produced and replaces every
// paragraph's and heading's raw source text with its parsed inline
// content, the last of the parser's three passes.
func resolveInlines(b *Block, refs ReferenceMap) {
	switch b.kind {
	case ParagraphKind, HeadingKind:
		b.inlines = parseInlines(b.raw, refs)
		b.raw = ""
	default:
		for _, child := range b.children {
			resolveInlines(child, refs)
		}
	}
}
