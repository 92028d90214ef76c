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

import (
	"html"
	"strings"
)

// unescapeText resolves backslash escapes and then HTML entity/numeric
// character references in s, in that order, matching how CommonMark
// processes a link destination or title's raw source text (spec §4.3).
// It is not used for ordinary paragraph text, which also has to track
// code spans, autolinks, and raw HTML interleaved with these same rules;
// see inlineParser.scan and scanCharRef in inline.go for that case.
func unescapeText(s string) string {
	return decodeEntities(unescapeBackslashes(s))
}

// unescapeBackslashes replaces "\" followed by an ASCII punctuation
// character with just that character. A backslash not followed by ASCII
// punctuation (including one at the end of the string) is left as-is.
func unescapeBackslashes(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && isASCIIPunctuation(s[i+1]) {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// decodeEntities replaces every named or numeric character reference in s
// with its corresponding Unicode code point, per spec §4.3's "recognize
// the full HTML5 named entity list" requirement. It draws on the standard
// library's own copy of that table: see DESIGN.md for why this is the one
// place this module reaches for the standard library over a dependency
// already in scope.
func decodeEntities(s string) string {
	if strings.IndexByte(s, '&') < 0 {
		return s
	}
	return html.UnescapeString(s)
}
