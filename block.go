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

import "strings"

// maxNestingDepth bounds how deep containers may nest, guarding against
// pathological input (spec's design notes call for a fixed cap so parse
// time stays polynomial in input size regardless of nesting).
const maxNestingDepth = 1000

// openLeaf is a leaf block still accumulating lines.
type openLeaf struct {
	kind BlockKind // ParagraphKind, CodeBlockKind, or HTMLBlockKind

	rawLines []string

	// CodeBlock
	fenced      bool
	fenceChar   byte
	fenceLen    int
	fenceIndent int
	info        string

	// HTMLBlock
	htmlCond int
}

// openContainer is a container block still open for continuation.
type openContainer struct {
	kind   BlockKind
	block  *Block
	parent *openContainer
	leaf   *openLeaf

	// ListItem
	contentCol int

	// List
	hadLooseItem bool

	// pendingBlank records that a blank line was seen while this container
	// was open, without yet knowing whether anything follows it at this
	// container's level. It resolves into looseness in consumePendingBlank
	// once (and only if) another block is attached here; a pendingBlank
	// that survives to the container's close (nothing followed) never
	// loosens anything, matching spec §4.2's exclusion of a list's
	// trailing blank lines from its tight/loose determination.
	pendingBlank bool
}

type blockBuilder struct {
	refs  ReferenceMap
	stack []*openContainer
}

// analyzeBlocks is Pass 2 of the parser (spec §4.2): it builds the block
// tree from lines, given the reference map that Pass 1 already collected.
// Paragraph and heading text is left unparsed (in Block.raw) for Pass 3.
func analyzeBlocks(lines []string, refs ReferenceMap) *Block {
	doc := &Block{kind: DocumentKind}
	b := &blockBuilder{
		refs:  refs,
		stack: []*openContainer{{kind: DocumentKind, block: doc}},
	}
	for _, line := range lines {
		b.processLine(line)
	}
	for len(b.stack) > 1 {
		b.closeTip()
	}
	b.closeLeafIn(b.stack[0])
	return doc
}

func (b *blockBuilder) tip() *openContainer {
	return b.stack[len(b.stack)-1]
}

// processLine runs one line through CommonMark's two-phase algorithm: first
// it descends as far as possible into the already-open containers, then it
// looks for new block starts in whatever text remains.
func (b *blockBuilder) processLine(line string) {
	rest := line
	depth := 1 // stack[0] (the document) always matches.

	for depth < len(b.stack) {
		c := b.stack[depth]
		switch c.kind {
		case BlockQuoteKind:
			trial, cols := stripUpToIndent(rest, 3)
			if cols > 3 || !strings.HasPrefix(trial, ">") {
				goto stopDescent
			}
			trial = trial[1:]
			if strings.HasPrefix(trial, " ") || strings.HasPrefix(trial, "\t") {
				trial, _ = stripUpToIndent(trial, 1)
			}
			rest = trial
		case ListKind:
			// No marker of its own; continuation is governed entirely by
			// its open ListItemKind child, handled on the next iteration.
		case ListItemKind:
			if isBlankLine(rest) {
				rest = ""
			} else {
				trial, ok := stripIndentCols(rest, c.contentCol)
				if !ok {
					goto stopDescent
				}
				rest = trial
			}
		}
		depth++
	}
stopDescent:

	// A line that fails to continue a container is a lazy continuation of
	// an open paragraph only if it doesn't otherwise open a new block
	// (spec §4.2's lazy continuation line rule); a list marker, heading,
	// and the like always win over lazy continuation.
	if depth < len(b.stack) {
		trimmed, _ := stripUpToIndent(rest, 3)
		if tipLeaf := b.stack[len(b.stack)-1].leaf; tipLeaf != nil && tipLeaf.kind == ParagraphKind &&
			!isBlankLine(rest) && !isParagraphInterrupt(rest) && parseListMarker(trimmed).end < 0 {
			b.appendToOpenParagraph(rest)
			return
		}
	}

	for len(b.stack) > depth {
		b.closeTip()
	}

	cur := b.tip()
	if cur.leaf != nil {
		if b.continueLeaf(cur, rest) {
			return
		}
	}

	b.openNewBlocks(rest)
}

// continueLeaf attempts to extend the open leaf in c with rest, assuming
// rest has already had every matching container prefix stripped. It
// reports whether the line was consumed this way; if it returns false, the
// leaf has been closed and the caller should look for new blocks.
func (b *blockBuilder) continueLeaf(c *openContainer, rest string) bool {
	leaf := c.leaf
	switch leaf.kind {
	case ParagraphKind:
		if isBlankLine(rest) {
			b.closeLeafIn(c)
			b.markPendingBlank()
			return false
		}
		if level := parseSetextHeadingUnderline(strings.TrimLeft(rest, " \t")); level != 0 && len(leaf.rawLines) > 0 {
			if indentLength(rest) < 4 {
				b.closeParagraphAsSetext(c, level)
				return true
			}
		}
		if isParagraphInterrupt(rest) {
			b.closeLeafIn(c)
			return false
		}
		leaf.rawLines = append(leaf.rawLines, strings.TrimLeft(rest, " \t"))
		return true

	case CodeBlockKind:
		if leaf.fenced {
			trimmed, cols := stripUpToIndent(rest, 3)
			if cols <= 3 {
				if f := parseCodeFence(trimmed); f.n > 0 && f.char == leaf.fenceChar && f.n >= leaf.fenceLen && !f.hasInfo {
					b.closeLeafIn(c)
					return true
				}
			}
			content, _ := stripUpToIndent(rest, leaf.fenceIndent)
			leaf.rawLines = append(leaf.rawLines, content)
			return true
		}
		if isBlankLine(rest) {
			leaf.rawLines = append(leaf.rawLines, "")
			return true
		}
		if indentColumns(rest) >= 4 {
			content, _ := stripIndentCols(rest, 4)
			leaf.rawLines = append(leaf.rawLines, content)
			return true
		}
		b.closeLeafIn(c)
		return false

	case HTMLBlockKind:
		leaf.rawLines = append(leaf.rawLines, rest)
		if htmlBlockConditions[leaf.htmlCond].endCondition(rest) {
			b.closeLeafIn(c)
		}
		return true
	}
	return false
}

// isParagraphInterrupt reports whether rest opens a block kind that is
// allowed to interrupt an open paragraph (spec §4.2): ATX heading,
// thematic break, block quote, list marker (bullets always; ordered lists
// only when starting at 1), fenced code, or an HTML block of a kind that
// can interrupt a paragraph. Indented code and setext underlines cannot.
func isParagraphInterrupt(rest string) bool {
	trimmed, cols := stripUpToIndent(rest, 3)
	if cols > 3 {
		return false
	}
	if h := parseATXHeading(trimmed); h.level > 0 {
		return true
	}
	if parseThematicBreak(trimmed) {
		return true
	}
	if strings.HasPrefix(trimmed, ">") {
		return true
	}
	if m := parseListMarker(trimmed); m.end >= 0 {
		if !m.isOrdered() || m.n == 1 {
			return true
		}
		return false
	}
	if f := parseCodeFence(trimmed); f.n > 0 {
		return true
	}
	if cond, ok := matchHTMLBlockStart(trimmed); ok && htmlBlockConditions[cond].canInterruptParagraph {
		return true
	}
	return false
}

// openNewBlocks opens as many container blocks as rest's prefix indicates,
// then opens exactly one leaf block (or none, for a blank line), matching
// spec §4.2's precedence order: ATX heading, thematic break, block quote,
// HTML block, list marker, fenced code, indented code, blank line,
// paragraph. (Link reference definitions were already extracted in Pass 1
// and are stripped again here when a paragraph closes, mirroring that same
// grammar so the lines don't reappear as paragraph text.)
func (b *blockBuilder) openNewBlocks(rest string) {
	for {
		if len(b.stack) >= maxNestingDepth {
			break
		}
		trial, cols := stripUpToIndent(rest, 3)
		if cols > 3 {
			break
		}
		if strings.HasPrefix(trial, ">") {
			after := trial[1:]
			if strings.HasPrefix(after, " ") || strings.HasPrefix(after, "\t") {
				after, _ = stripUpToIndent(after, 1)
			}
			b.open(&openContainer{kind: BlockQuoteKind, block: &Block{kind: BlockQuoteKind}})
			rest = after
			continue
		}
		if m := parseListMarker(trial); m.end >= 0 && !parseThematicBreak(trial) {
			markerCols := cols + m.end
			after := trial[m.end:]
			contentIndent := indentLength(after)
			var itemContentCol int
			if isBlankLine(after) {
				itemContentCol = markerCols + 1
			} else if contentIndent >= 4 {
				itemContentCol = markerCols + 1
			} else {
				itemContentCol = markerCols + contentIndent
			}
			b.openList(m)
			b.open(&openContainer{
				kind:       ListItemKind,
				block:      &Block{kind: ListItemKind},
				contentCol: itemContentCol,
			})
			after, _ = stripUpToIndent(after, itemContentCol-markerCols)
			rest = after
			continue
		}
		break
	}

	if h := parseATXHeading(rest); h.level > 0 {
		blk := &Block{kind: HeadingKind, level: h.level, raw: h.content}
		b.appendFinished(blk)
		return
	}
	if parseThematicBreak(rest) {
		b.appendFinished(&Block{kind: ThematicBreakKind})
		return
	}
	if f := parseCodeFence(rest); f.n > 0 {
		_, indent := stripUpToIndent(rest, 3)
		b.openLeaf(&openLeaf{
			kind: CodeBlockKind, fenced: true,
			fenceChar: f.char, fenceLen: f.n, fenceIndent: indent,
			info: f.info,
		})
		return
	}
	if cond, ok := matchHTMLBlockStart(rest); ok {
		leaf := &openLeaf{kind: HTMLBlockKind, htmlCond: cond, rawLines: []string{rest}}
		b.openLeaf(leaf)
		if htmlBlockConditions[cond].endCondition(rest) {
			b.closeLeafIn(b.tip())
		}
		return
	}
	if indentColumns(rest) >= 4 && !isBlankLine(rest) {
		content, _ := stripIndentCols(rest, 4)
		b.openLeaf(&openLeaf{kind: CodeBlockKind, rawLines: []string{content}})
		return
	}
	if isBlankLine(rest) {
		b.markPendingBlank()
		return
	}
	b.openLeaf(&openLeaf{kind: ParagraphKind, rawLines: []string{strings.TrimLeft(rest, " \t")}})
}

// openList opens a ListKind container for marker, reusing the current tip
// if it's already an open list with a matching delimiter. A mismatched
// delimiter ends the current list (spec §4.2: a new list starts instead of
// continuing one with a different bullet or ordered-list delimiter
// character). Any other tip (document, block quote, or a list item whose
// content is this very marker on the same line) always starts a new,
// nested list.
func (b *blockBuilder) openList(m listMarker) {
	cur := b.tip()
	if cur.kind == ListKind {
		if sameListDelimiter(cur.block.delimiter, cur.block.ordered, m) {
			return
		}
		b.closeTip()
	}
	start := m.n
	if !m.isOrdered() {
		start = 0
	}
	b.open(&openContainer{
		kind: ListKind,
		block: &Block{
			kind: ListKind, ordered: m.isOrdered(), delimiter: m.delim,
			start: start, tight: true,
		},
	})
}

func sameListDelimiter(delim byte, ordered bool, m listMarker) bool {
	if ordered != m.isOrdered() {
		return false
	}
	if !ordered {
		return delim == m.delim
	}
	return delim == m.delim
}

func (b *blockBuilder) open(c *openContainer) {
	b.consumePendingBlank()
	c.parent = b.tip()
	b.stack = append(b.stack, c)
}

func (b *blockBuilder) openLeaf(leaf *openLeaf) {
	b.consumePendingBlank()
	b.tip().leaf = leaf
}

// appendFinished appends a fully-formed leaf block directly to the current
// tip container's children (used for single-line leaves: headings and
// thematic breaks never span multiple lines).
func (b *blockBuilder) appendFinished(blk *Block) {
	b.consumePendingBlank()
	cur := b.tip()
	cur.block.children = append(cur.block.children, blk)
}

// markPendingBlank records, on every list and list item currently open, that
// a blank line has just been seen at this point in their content. It's
// called whenever a line turns out to be blank once every matching
// container prefix has been stripped, whether that line stands on its own
// (spec §4.2's blank line rule) or closes an open paragraph.
func (b *blockBuilder) markPendingBlank() {
	for _, c := range b.stack {
		if c.kind == ListKind || c.kind == ListItemKind {
			c.pendingBlank = true
		}
	}
}

// consumePendingBlank resolves a pending blank line on the current tip into
// list looseness now that a new block is about to be attached there: a
// pending blank on a list means two of its items were separated by a blank
// line, and a pending blank on a list item means two of the item's own
// blocks were (spec §4.2's tight/loose rule).
func (b *blockBuilder) consumePendingBlank() {
	cur := b.tip()
	if !cur.pendingBlank {
		return
	}
	cur.pendingBlank = false
	switch cur.kind {
	case ListKind:
		cur.hadLooseItem = true
	case ListItemKind:
		if cur.parent != nil && cur.parent.kind == ListKind {
			cur.parent.hadLooseItem = true
		}
	}
}

// appendToOpenParagraph appends a lazy continuation line to whichever
// container's open paragraph is at the tip of the stack.
func (b *blockBuilder) appendToOpenParagraph(rest string) {
	leaf := b.tip().leaf
	leaf.rawLines = append(leaf.rawLines, strings.TrimLeft(rest, " \t"))
}

// closeLeafIn finalizes c's open leaf, if any, turning it into a *Block and
// appending it to c's own block.
func (b *blockBuilder) closeLeafIn(c *openContainer) {
	leaf := c.leaf
	if leaf == nil {
		return
	}
	c.leaf = nil
	switch leaf.kind {
	case ParagraphKind:
		blk := finishParagraph(leaf.rawLines, b.refs)
		if blk != nil {
			c.block.children = append(c.block.children, blk)
		}
	case CodeBlockKind:
		lines := leaf.rawLines
		for len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		literal := ""
		if len(lines) > 0 {
			literal = strings.Join(lines, "\n") + "\n"
		}
		c.block.children = append(c.block.children, &Block{
			kind: CodeBlockKind, fenced: leaf.fenced, info: leaf.info, literal: literal,
		})
	case HTMLBlockKind:
		lines := leaf.rawLines
		for len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		c.block.children = append(c.block.children, &Block{
			kind: HTMLBlockKind, html: strings.Join(lines, "\n"),
		})
	}
}

// closeParagraphAsSetext converts the tip container's open paragraph into a
// setext heading of the given level.
func (b *blockBuilder) closeParagraphAsSetext(c *openContainer, level int) {
	leaf := c.leaf
	c.leaf = nil
	raw := stripReferenceDefinitions(leaf.rawLines, b.refs)
	if raw == "" {
		return
	}
	c.block.children = append(c.block.children, &Block{kind: HeadingKind, level: level, raw: raw})
}

// closeTip finalizes the deepest open container (and any leaf it holds),
// determines list looseness, and attaches it to its parent.
func (b *blockBuilder) closeTip() {
	c := b.stack[len(b.stack)-1]
	b.closeLeafIn(c)
	b.stack = b.stack[:len(b.stack)-1]
	parent := b.tip()

	if c.kind == ListKind {
		c.block.tight = !c.hadLooseItem
	}
	// A blank line that later content inside c already followed is not a
	// trailing blank line at the parent's level either.
	if !c.pendingBlank {
		parent.pendingBlank = false
	}
	parent.block.children = append(parent.block.children, c.block)
}

// finishParagraph strips any leading link reference definitions (using the
// same grammar Pass 1 used, per spec §4.1) from a paragraph's raw lines and
// returns the remaining paragraph block, or nil if nothing remains.
func finishParagraph(rawLines []string, refs ReferenceMap) *Block {
	raw := stripReferenceDefinitions(rawLines, refs)
	if raw == "" {
		return nil
	}
	return &Block{kind: ParagraphKind, raw: raw}
}

func stripReferenceDefinitions(rawLines []string, refs ReferenceMap) string {
	lines := rawLines
	for len(lines) > 0 {
		consumed := scanDefinitions(lines, refs)
		if consumed == 0 {
			break
		}
		lines = lines[consumed:]
	}
	return strings.Join(lines, "\n")
}
