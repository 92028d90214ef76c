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

// Package commonmark provides a CommonMark parser and HTML renderer.
package commonmark

// BlockKind is an enumeration of the kinds of [Block] nodes.
type BlockKind uint8

const (
	// DocumentKind is the root container of every parsed document.
	DocumentKind BlockKind = 1 + iota
	// BlockQuoteKind is a block quote container.
	BlockQuoteKind
	// ListKind is an ordered or unordered list container.
	ListKind
	// ListItemKind is a single item inside a [ListKind] container.
	ListItemKind
	// HeadingKind is used for both ATX and setext headings.
	HeadingKind
	// ParagraphKind is a run of text lines.
	ParagraphKind
	// ThematicBreakKind is a horizontal rule. It never has children.
	ThematicBreakKind
	// CodeBlockKind is used for both indented and fenced code blocks.
	CodeBlockKind
	// HTMLBlockKind is a block of raw HTML, passed through verbatim.
	HTMLBlockKind
)

// Block is a structural node in a CommonMark document: a container
// (document, block quote, list, list item) or a leaf (heading, paragraph,
// thematic break, code block, HTML block).
//
// A Block's children are exclusively owned by it: there is no sharing and
// no back-pointers. Container blocks hold Children; leaf blocks that carry
// text hold Inlines. At most one of the two is populated for any Block.
type Block struct {
	kind     BlockKind
	children []*Block
	inlines  []*Inline

	// raw holds a Paragraph's or Heading's source text between Pass 2
	// (block analysis) and Pass 3 (inline analysis), which replaces it
	// with parsed Inlines. Empty once parsing has finished.
	raw string

	// Heading
	level int

	// List / ListItem
	ordered   bool
	start     int
	tight     bool
	delimiter byte

	// CodeBlock
	info    string
	literal string
	fenced  bool

	// HTMLBlock
	html string
}

// Kind reports the node's kind, or zero if b is nil.
func (b *Block) Kind() BlockKind {
	if b == nil {
		return 0
	}
	return b.kind
}

// Children returns the block's container children.
// Calling Children on nil or on a leaf block returns nil.
func (b *Block) Children() []*Block {
	if b == nil {
		return nil
	}
	return b.children
}

// Inlines returns the block's inline content.
// Only [HeadingKind] and [ParagraphKind] blocks carry inlines.
func (b *Block) Inlines() []*Inline {
	if b == nil {
		return nil
	}
	return b.inlines
}

// Level returns the 1-6 heading level for a [HeadingKind] block, or 0 otherwise.
func (b *Block) Level() int {
	if b.Kind() != HeadingKind {
		return 0
	}
	return b.level
}

// IsOrdered reports whether a [ListKind] block is an ordered list.
func (b *Block) IsOrdered() bool {
	return b.Kind() == ListKind && b.ordered
}

// Start returns the ordinal value of an ordered list's first marker.
func (b *Block) Start() int {
	if b.Kind() != ListKind {
		return 0
	}
	return b.start
}

// Tight reports whether a [ListKind] block is tight, as determined during
// block analysis (see spec §4.2).
func (b *Block) Tight() bool {
	return b.Kind() == ListKind && b.tight
}

// Delimiter returns the marker character ('-', '+', '*', '.', or ')') of a
// [ListKind] block.
func (b *Block) Delimiter() byte {
	if b.Kind() != ListKind {
		return 0
	}
	return b.delimiter
}

// Fenced reports whether a [CodeBlockKind] block was opened with a fence
// (``` or ~~~) rather than by indentation.
func (b *Block) Fenced() bool {
	return b.Kind() == CodeBlockKind && b.fenced
}

// Info returns a fenced code block's info string, or "" if absent.
func (b *Block) Info() string {
	if b.Kind() != CodeBlockKind {
		return ""
	}
	return b.info
}

// Literal returns a code block's final, line-joined literal text.
func (b *Block) Literal() string {
	if b.Kind() != CodeBlockKind {
		return ""
	}
	return b.literal
}

// HTML returns an HTML block's raw literal text.
func (b *Block) HTML() string {
	if b.Kind() != HTMLBlockKind {
		return ""
	}
	return b.html
}

// InlineKind is an enumeration of the kinds of [Inline] nodes.
type InlineKind uint8

const (
	// TextKind is a run of literal text.
	TextKind InlineKind = 1 + iota
	// SoftBreakKind is a line break within a paragraph that renders as either
	// a space or a newline.
	SoftBreakKind
	// HardBreakKind is a forced line break (two-plus trailing spaces, or a
	// trailing backslash).
	HardBreakKind
	// CodeSpanKind is inline code delimited by backtick runs.
	CodeSpanKind
	// EmphasisKind wraps emphasized (<em>) content.
	EmphasisKind
	// StrongKind wraps strongly emphasized (<strong>) content.
	StrongKind
	// LinkKind is a hyperlink, produced from inline, reference, or autolink syntax.
	LinkKind
	// ImageKind is an image reference.
	ImageKind
	// HTMLInlineKind is a raw inline HTML tag, comment, or declaration.
	HTMLInlineKind
)

// Inline is a node that appears inside a leaf block's text content.
//
// Link and image destinations are stored unescaped and un-percent-encoded;
// percent-encoding is applied only by the renderer.
type Inline struct {
	kind     InlineKind
	text     string
	children []*Inline

	destination  string
	title        string
	titlePresent bool
}

// Kind reports the node's kind, or zero if inline is nil.
func (inline *Inline) Kind() InlineKind {
	if inline == nil {
		return 0
	}
	return inline.kind
}

// Text returns the literal text of a [TextKind], [CodeSpanKind], or
// [HTMLInlineKind] node.
func (inline *Inline) Text() string {
	if inline == nil {
		return ""
	}
	return inline.text
}

// Children returns the node's inline children.
// Calling Children on nil returns nil.
func (inline *Inline) Children() []*Inline {
	if inline == nil {
		return nil
	}
	return inline.children
}

// Destination returns the unescaped link or image destination.
func (inline *Inline) Destination() string {
	if inline == nil {
		return ""
	}
	return inline.destination
}

// Title returns the unescaped link or image title.
func (inline *Inline) Title() string {
	if inline == nil {
		return ""
	}
	return inline.title
}

// TitlePresent reports whether a title attribute was present at all,
// distinguishing an empty title ("") from an absent one.
func (inline *Inline) TitlePresent() bool {
	return inline != nil && inline.titlePresent
}

// Document returns the root [Block] of a parsed document.
// It is always of kind [DocumentKind].
type Document struct {
	Block
}
