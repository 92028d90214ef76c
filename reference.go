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
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LinkDefinition is the destination and optional title recorded by a
// [link reference definition].
//
// [link reference definition]: https://spec.commonmark.org/0.31.2/#link-reference-definition
type LinkDefinition struct {
	Destination  string
	Title        string
	TitlePresent bool
}

// ReferenceMap holds every link reference definition collected from a
// document, keyed by normalized label. The first definition for a label
// wins; later duplicates are ignored.
type ReferenceMap map[string]LinkDefinition

// MatchReference reports whether the normalized label appears in the map.
func (m ReferenceMap) MatchReference(normalizedLabel string) bool {
	_, ok := m[normalizedLabel]
	return ok
}

var labelFold = cases.Fold(cases.Compact, language.Und)

// normalizeLabel implements the CommonMark notion of matching labels:
// Unicode case-folded, internal whitespace runs collapsed to a single space,
// and leading/trailing whitespace trimmed.
func normalizeLabel(s string) string {
	fields := strings.Fields(s)
	return labelFold.String(strings.Join(fields, " "))
}

// collectReferences is Pass 1 of the parser (spec §4.1): a minimal state
// machine over raw lines that records every valid link reference definition
// it finds, skipping fenced code, indented code, and HTML block contexts
// (which cannot contain definitions) and recursing through block quote
// prefixes. It never fails; malformed definitions are simply not recorded,
// and are left for Pass 2 to reinterpret as paragraph text.
func collectReferences(lines []string) ReferenceMap {
	refs := make(ReferenceMap)
	collectReferencesIn(lines, refs)
	return refs
}

func collectReferencesIn(lines []string, refs ReferenceMap) {
	var (
		inFence   bool
		fenceChar byte
		fenceLen  int
		inHTML    bool
		htmlCond  int
	)

	i := 0
	for i < len(lines) {
		line := lines[i]

		if inFence {
			trimmed := strings.TrimLeft(line, " \t")
			indent := len(line) - len(trimmed)
			if f := parseCodeFence(trimmed); indent < 4 && f.n > 0 && f.char == fenceChar && f.n >= fenceLen && !f.hasInfo {
				inFence = false
			}
			i++
			continue
		}
		if inHTML {
			if htmlBlockConditions[htmlCond].endCondition(line) {
				inHTML = false
			}
			i++
			continue
		}
		if isBlankLine(line) {
			i++
			continue
		}

		trimmed := strings.TrimLeft(line, " \t")
		indent := len(line) - len(trimmed)

		if indent < 4 && strings.HasPrefix(trimmed, ">") {
			// Recurse into the block quote's content for the remainder of
			// this contiguous input; the rest of the document (after the
			// quote ends) is handled by this same loop, which resumes at the
			// first line after the quote, so we only need to strip quote
			// markers for as long as lines keep starting with '>' or
			// continuing the quote's lazy paragraph.
			var quoted []string
			j := i
			for j < len(lines) {
				lt := strings.TrimLeft(lines[j], " \t")
				lind := len(lines[j]) - len(lt)
				if lind < 4 && strings.HasPrefix(lt, ">") {
					rest := lt[1:]
					if len(rest) > 0 && (rest[0] == ' ' || rest[0] == '\t') {
						rest = rest[1:]
					}
					quoted = append(quoted, rest)
					j++
					continue
				}
				if isBlankLine(lines[j]) {
					break
				}
				// Lazy continuation line of the quoted paragraph.
				quoted = append(quoted, lines[j])
				j++
			}
			collectReferencesIn(quoted, refs)
			i = j
			continue
		}

		if indent < 4 {
			if f := parseCodeFence(trimmed); f.n > 0 {
				inFence, fenceChar, fenceLen = true, f.char, f.n
				i++
				continue
			}
			if len(trimmed) > 0 && trimmed[0] == '<' {
				if cond, ok := matchHTMLBlockStart(trimmed); ok {
					if !htmlBlockConditions[cond].endCondition(trimmed) {
						inHTML, htmlCond = true, cond
					}
					i++
					continue
				}
			}
		} else {
			// Indented code: never contains definitions.
			i++
			continue
		}

		consumed := scanDefinitions(lines[i:], refs)
		if consumed == 0 {
			consumed = 1
		}
		i += consumed
	}
}

// refScanner is a cursor over a buffer formed by joining consecutive
// paragraph-like lines with '\n', used only while scanning for reference
// definitions.
type refScanner struct {
	s   string
	pos int
}

func (c *refScanner) current() byte {
	if c.pos >= len(c.s) {
		return 0
	}
	return c.s[c.pos]
}

func (c *refScanner) at(off int) byte {
	if c.pos+off >= len(c.s) || c.pos+off < 0 {
		return 0
	}
	return c.s[c.pos+off]
}

func (c *refScanner) advance(n int) {
	c.pos += n
}

// skipSpacesTabs skips spaces and tabs only (not line endings).
func (c *refScanner) skipSpacesTabs() {
	for c.current() == ' ' || c.current() == '\t' {
		c.pos++
	}
}

// skipLinkSpace skips whitespace that may include at most one line ending,
// as permitted between the parts of a reference definition. It reports
// whether anything was consumed.
func (c *refScanner) skipLinkSpace() bool {
	start := c.pos
	c.skipSpacesTabs()
	if c.current() == '\n' {
		c.pos++
		c.skipSpacesTabs()
	}
	return c.pos > start
}

// scanDefinitions attempts to parse one or more consecutive link reference
// definitions from the start of lines, recording any into refs, and returns
// the number of whole lines consumed. A return of 0 means no definition was
// found at all (the caller should treat the first line as an ordinary
// paragraph line and advance by one).
func scanDefinitions(lines []string, refs ReferenceMap) int {
	joined := strings.Join(lines, "\n")
	c := &refScanner{s: joined}
	linesConsumed := 0

	for {
		start := c.pos
		label, ok := scanRefLabel(c)
		if !ok || c.current() != ':' {
			c.pos = start
			break
		}
		c.advance(1)
		if !c.skipLinkSpace() {
			if !isRefDestStart(c.current()) {
				c.pos = start
				break
			}
		}

		dest, ok := scanRefDestination(c)
		if !ok {
			c.pos = start
			break
		}

		// Decide if the definition ends on this line (no title) or if a
		// title follows, possibly on the next line.
		afterDest := c.pos
		restOfLine, eolOK := scanSpacesThenEOL(c)
		if eolOK {
			// Definition could end here; but a title might still follow on
			// the next line. Try that first (longest match), falling back
			// to ending here.
			trial := *c
			trial.pos = afterDest
			if trial.skipLinkSpace() {
				if title, tok := scanRefTitle(&trial); tok {
					if _, ok2 := scanSpacesThenEOL(&trial); ok2 {
						commitDefinition(refs, label, dest, title, true)
						c.pos = trial.pos
						linesConsumed += strings.Count(joined[start:c.pos], "\n")
						continue
					}
				}
			}
			commitDefinition(refs, label, dest, "", false)
			c.pos = restOfLine
			linesConsumed += strings.Count(joined[start:c.pos], "\n")
			continue
		}

		// No immediate end-of-line: a title must follow, on this or the next line.
		if !c.skipLinkSpace() {
			c.pos = start
			break
		}
		title, tok := scanRefTitle(c)
		if !tok {
			c.pos = start
			break
		}
		end, ok2 := scanSpacesThenEOL(c)
		if !ok2 {
			c.pos = start
			break
		}
		commitDefinition(refs, label, dest, title, true)
		c.pos = end
		linesConsumed += strings.Count(joined[start:c.pos], "\n")
	}

	// A definition that runs to the end of the input also consumes its
	// last line, even though no line ending follows it.
	if c.pos > 0 && c.pos == len(joined) && joined[c.pos-1] != '\n' {
		linesConsumed++
	}
	return linesConsumed
}

func commitDefinition(refs ReferenceMap, label, dest, title string, titlePresent bool) {
	norm := normalizeLabel(label)
	if norm == "" {
		return
	}
	if _, exists := refs[norm]; exists {
		return
	}
	refs[norm] = LinkDefinition{
		Destination:  dest,
		Title:        title,
		TitlePresent: titlePresent,
	}
}

func isRefDestStart(b byte) bool {
	return b != 0 && b != '\n'
}

// scanRefLabel scans a "[...]" label, returning its raw inner text.
func scanRefLabel(c *refScanner) (string, bool) {
	if c.current() != '[' {
		return "", false
	}
	c.advance(1)
	start := c.pos
	n := 0
	for {
		ch := c.current()
		if ch == 0 {
			return "", false
		}
		if ch == '\\' && isASCIIPunctuation(c.at(1)) {
			c.advance(2)
			n += 2
			continue
		}
		if ch == '[' {
			return "", false
		}
		if ch == ']' {
			break
		}
		c.advance(1)
		n++
		if n > 999 {
			return "", false
		}
	}
	label := c.s[start:c.pos]
	c.advance(1) // consume ']'
	if strings.TrimSpace(label) == "" {
		return "", false
	}
	return label, true
}

// scanRefDestination scans either a "<...>" or raw-form link destination.
func scanRefDestination(c *refScanner) (string, bool) {
	if c.current() == '<' {
		c.advance(1)
		start := c.pos
		for {
			ch := c.current()
			switch {
			case ch == 0 || ch == '\n':
				return "", false
			case ch == '\\' && isASCIIPunctuation(c.at(1)):
				c.advance(2)
			case ch == '<':
				return "", false
			case ch == '>':
				dest := c.s[start:c.pos]
				c.advance(1)
				return unescapeText(dest), true
			default:
				c.advance(1)
			}
		}
	}

	start := c.pos
	parens := 0
	if c.current() == 0 || c.current() == ' ' || c.current() == '\n' {
		return "", false
	}
	for {
		ch := c.current()
		switch {
		case ch == 0 || ch == ' ' || ch == '\t' || ch == '\n':
			if parens != 0 {
				return "", false
			}
			dest := c.s[start:c.pos]
			return unescapeText(dest), true
		case ch < 0x20 || ch == 0x7f:
			return "", false
		case ch == '\\' && isASCIIPunctuation(c.at(1)):
			c.advance(2)
		case ch == '(':
			parens++
			c.advance(1)
		case ch == ')':
			if parens == 0 {
				dest := c.s[start:c.pos]
				return unescapeText(dest), true
			}
			parens--
			c.advance(1)
		default:
			c.advance(1)
		}
	}
}

// scanRefTitle scans a title delimited by matching " ", ' ', or ( ).
func scanRefTitle(c *refScanner) (string, bool) {
	open := c.current()
	var close byte
	switch open {
	case '"', '\'':
		close = open
	case '(':
		close = ')'
	default:
		return "", false
	}
	c.advance(1)
	start := c.pos
	for {
		ch := c.current()
		switch {
		case ch == 0:
			return "", false
		case ch == '\\' && isASCIIPunctuation(c.at(1)):
			c.advance(2)
		case ch == close:
			title := c.s[start:c.pos]
			c.advance(1)
			return unescapeText(title), true
		case open == '(' && ch == '(':
			return "", false
		default:
			c.advance(1)
		}
	}
}

// scanSpacesThenEOL reports whether, after skipping trailing spaces/tabs,
// the cursor sits at a line ending or end of input; it returns the position
// just past that line ending (or end of input).
func scanSpacesThenEOL(c *refScanner) (int, bool) {
	save := c.pos
	c.skipSpacesTabs()
	if c.current() == 0 {
		return c.pos, true
	}
	if c.current() == '\n' {
		return c.pos + 1, true
	}
	c.pos = save
	return save, false
}
