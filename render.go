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
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/atom"
)

// Renderer renders a parsed [Document] to HTML. The zero value renders
// with no raw-HTML filtering or suppression.
type Renderer struct {
	// IgnoreRaw, if true, drops HTML blocks and raw inline HTML from the
	// output entirely instead of passing them through verbatim. This
	// guarantees the rendered output uses only the tags this renderer
	// itself generates.
	IgnoreRaw bool

	// FilterTag, if non-nil, reports whether an HTML element with the
	// given lowercased tag name should have its leading "<" escaped to
	// "&lt;" rather than passed through. It is consulted both for raw HTML
	// and for the tags the renderer itself generates; with IgnoreRaw set,
	// only the generated tags remain for it to filter. See [FilterTagGFM]
	// for a ready-made policy.
	FilterTag func(tag []byte) bool
}

// ToHTML parses source as a CommonMark document and renders it to HTML
// using the default [Renderer] (spec §6's top-level entry point).
func ToHTML(source []byte) []byte {
	return new(Renderer).Render(Parse(source))
}

// Render renders doc to HTML according to r's options.
func (r *Renderer) Render(doc *Document) []byte {
	s := &renderState{r: r}
	s.renderBlocks(doc.Children(), false)
	return s.buf.Bytes()
}

// FilterTagGFM performs the same raw-HTML tag filtering as GitHub Flavored
// Markdown's tagfilter extension: the listed elements are never allowed to
// take effect as live HTML, regardless of how they reached the renderer.
// It's suitable for use as [Renderer.FilterTag].
func FilterTagGFM(tag []byte) bool {
	switch atom.Lookup(tag) {
	case atom.Title, atom.Textarea, atom.Style, atom.Xmp, atom.Iframe,
		atom.Noembed, atom.Noframes, atom.Script, atom.Plaintext:
		return true
	default:
		return false
	}
}

type renderState struct {
	r   *Renderer
	buf bytes.Buffer
}

func (s *renderState) renderBlocks(blocks []*Block, tight bool) {
	for _, b := range blocks {
		s.renderBlock(b, tight)
	}
}

func (s *renderState) renderBlock(b *Block, tight bool) {
	switch b.Kind() {
	case ParagraphKind:
		if tight {
			s.renderInlines(b.Inlines())
			return
		}
		s.openTag(atom.P)
		s.renderInlines(b.Inlines())
		s.closeTag(atom.P)
	case HeadingKind:
		a := headingAtom(b.Level())
		s.openTag(a)
		s.renderInlines(b.Inlines())
		s.closeTag(a)
	case ThematicBreakKind:
		s.openTagAttr(atom.Hr)
		s.buf.WriteString(" />\n")
	case CodeBlockKind:
		s.openTagAttr(atom.Pre)
		s.buf.WriteByte('>')
		s.openTagAttr(atom.Code)
		if fields := strings.Fields(b.Info()); len(fields) > 0 {
			s.buf.WriteString(` class="language-`)
			escapeAttribute(&s.buf, fields[0])
			s.buf.WriteByte('"')
		}
		s.buf.WriteByte('>')
		escapeText(&s.buf, b.Literal())
		s.closeTag(atom.Code)
		s.buf.Truncate(s.buf.Len() - 1) // drop closeTag's trailing newline
		s.closeTag(atom.Pre)
	case HTMLBlockKind:
		if s.r.IgnoreRaw {
			return
		}
		s.writeRawHTML(b.HTML())
		s.buf.WriteByte('\n')
	case BlockQuoteKind:
		s.openTag(atom.Blockquote)
		s.buf.WriteByte('\n')
		s.renderBlocks(b.Children(), false)
		s.closeTag(atom.Blockquote)
	case ListKind:
		a := atom.Ul
		if b.IsOrdered() {
			a = atom.Ol
		}
		s.openTagAttr(a)
		if b.IsOrdered() && b.Start() != 1 {
			s.buf.WriteString(` start="`)
			s.buf.WriteString(strconv.Itoa(b.Start()))
			s.buf.WriteByte('"')
		}
		s.buf.WriteString(">\n")
		tight = b.Tight()
		for _, item := range b.Children() {
			s.renderBlock(item, tight)
		}
		s.closeTag(a)
	case ListItemKind:
		s.openTag(atom.Li)
		s.renderListItemChildren(b.Children(), tight)
		s.closeTag(atom.Li)
	}
}

func headingAtom(level int) atom.Atom {
	switch level {
	case 1:
		return atom.H1
	case 2:
		return atom.H2
	case 3:
		return atom.H3
	case 4:
		return atom.H4
	case 5:
		return atom.H5
	default:
		return atom.H6
	}
}

// openTagAttr writes a tag's name, without its closing angle bracket, so
// the caller can append attributes before closing it itself.
func (s *renderState) openTagAttr(a atom.Atom) {
	start := s.buf.Len()
	s.buf.WriteByte('<')
	s.buf.WriteString(a.String())
	if s.r.FilterTag != nil && s.r.FilterTag(s.buf.Bytes()[start+1:]) {
		tag := s.buf.String()[start+1:]
		s.buf.Truncate(start)
		s.buf.WriteString("&lt;")
		s.buf.WriteString(tag)
	}
}

func (s *renderState) openTag(a atom.Atom) {
	s.openTagAttr(a)
	s.buf.WriteByte('>')
}

func (s *renderState) closeTag(a atom.Atom) {
	start := s.buf.Len()
	s.buf.WriteString("</")
	s.buf.WriteString(a.String())
	if s.r.FilterTag != nil && s.r.FilterTag(s.buf.Bytes()[start+2:]) {
		tag := s.buf.String()[start+2:]
		s.buf.Truncate(start)
		s.buf.WriteString("&lt;/")
		s.buf.WriteString(tag)
	}
	s.buf.WriteString(">\n")
}

// renderListItemChildren renders a list item's children, unwrapping a
// tight list's paragraphs into their bare inline content (spec §5.3's
// tight-list rendering rule) while every other block keeps its normal
// tags. A newline always separates the item's opening tag from a
// non-paragraph block, but a lone unwrapped paragraph produces no
// newlines at all, matching the reference renderer's output for a plain
// tight item ("<li>text</li>", not "<li>\ntext\n</li>").
func (s *renderState) renderListItemChildren(children []*Block, tight bool) {
	for _, child := range children {
		if tight && child.Kind() == ParagraphKind {
			s.renderInlines(child.Inlines())
			continue
		}
		s.buf.WriteByte('\n')
		s.renderBlock(child, tight)
	}
}

func (s *renderState) renderInlines(inlines []*Inline) {
	for _, in := range inlines {
		s.renderInline(in)
	}
}

func (s *renderState) renderInline(in *Inline) {
	switch in.Kind() {
	case TextKind:
		escapeText(&s.buf, in.Text())
	case SoftBreakKind:
		s.buf.WriteByte('\n')
	case HardBreakKind:
		s.openTagAttr(atom.Br)
		s.buf.WriteString(" />\n")
	case CodeSpanKind:
		s.openTag(atom.Code)
		escapeText(&s.buf, in.Text())
		s.closeInlineTag(atom.Code)
	case HTMLInlineKind:
		if s.r.IgnoreRaw {
			return
		}
		s.writeRawHTML(in.Text())
	case EmphasisKind:
		s.openTag(atom.Em)
		s.renderInlines(in.Children())
		s.closeInlineTag(atom.Em)
	case StrongKind:
		s.openTag(atom.Strong)
		s.renderInlines(in.Children())
		s.closeInlineTag(atom.Strong)
	case LinkKind:
		s.openTagAttr(atom.A)
		s.buf.WriteString(` href="`)
		escapeAttribute(&s.buf, normalizeURI(in.Destination()))
		s.buf.WriteByte('"')
		s.writeTitleAttr(in)
		s.buf.WriteByte('>')
		s.renderInlines(in.Children())
		s.closeInlineTag(atom.A)
	case ImageKind:
		s.openTagAttr(atom.Img)
		s.buf.WriteString(` src="`)
		escapeAttribute(&s.buf, normalizeURI(in.Destination()))
		s.buf.WriteString(`" alt="`)
		escapeAttribute(&s.buf, plainText(in.Children()))
		s.buf.WriteByte('"')
		s.writeTitleAttr(in)
		s.buf.WriteString(" />")
	}
}

func (s *renderState) writeTitleAttr(in *Inline) {
	if !in.TitlePresent() {
		return
	}
	s.buf.WriteString(` title="`)
	escapeAttribute(&s.buf, in.Title())
	s.buf.WriteByte('"')
}

// closeInlineTag is closeTag without the trailing newline that's only
// appropriate after a block-level element.
func (s *renderState) closeInlineTag(a atom.Atom) {
	start := s.buf.Len()
	s.buf.WriteString("</")
	s.buf.WriteString(a.String())
	if s.r.FilterTag != nil && s.r.FilterTag(s.buf.Bytes()[start+2:]) {
		tag := s.buf.String()[start+2:]
		s.buf.Truncate(start)
		s.buf.WriteString("&lt;/")
		s.buf.WriteString(tag)
	}
	s.buf.WriteByte('>')
}

// plainText flattens an image's description into plain text (spec §6.4):
// nested emphasis, links, and code spans contribute only their text, not
// their tags, to the alt attribute.
func plainText(inlines []*Inline) string {
	var b strings.Builder
	for _, in := range inlines {
		switch in.Kind() {
		case TextKind, CodeSpanKind, HTMLInlineKind:
			b.WriteString(in.Text())
		case SoftBreakKind, HardBreakKind:
			b.WriteByte('\n')
		default:
			b.WriteString(plainText(in.Children()))
		}
	}
	return b.String()
}

const (
	htmlCommentPrefix = "<!--"
	cdataPrefix       = "<![CDATA["
)

// writeRawHTML copies raw HTML verbatim to s.buf, escaping the leading "<"
// of any tag s.r.FilterTag disallows, following the shape of GFM's
// tagfilter extension. Comments, processing instructions, declarations,
// and CDATA sections are copied through untouched without being treated as
// tags, since the filter only ever targets element tags.
func (s *renderState) writeRawHTML(raw string) {
	if s.r.FilterTag == nil {
		s.buf.WriteString(raw)
		return
	}
	i := 0
	for i < len(raw) {
		if raw[i] != '<' {
			s.buf.WriteByte(raw[i])
			i++
			continue
		}
		switch {
		case strings.HasPrefix(raw[i:], cdataPrefix):
			i = s.copyThrough(raw, i, "]]>")
		case strings.HasPrefix(raw[i:], htmlCommentPrefix):
			i = s.copyThrough(raw, i, "-->")
		case i+1 < len(raw) && (raw[i+1] == '!' || raw[i+1] == '?'):
			i = s.copyThrough(raw, i, ">")
		default:
			i = s.writeRawTag(raw, i)
		}
	}
}

// copyThrough copies raw[i:] through the first occurrence of terminator
// (or to the end of raw, if terminator never appears) and returns the
// index just past it.
func (s *renderState) copyThrough(raw string, i int, terminator string) int {
	end := strings.Index(raw[i:], terminator)
	if end < 0 {
		s.buf.WriteString(raw[i:])
		return len(raw)
	}
	stop := i + end + len(terminator)
	s.buf.WriteString(raw[i:stop])
	return stop
}

// writeRawTag handles a single "<" that begins an open or close element
// tag, escaping its leading angle bracket if the tag name is filtered.
func (s *renderState) writeRawTag(raw string, i int) int {
	j := i + 1
	if j < len(raw) && raw[j] == '/' {
		j++
	}
	nameStart := j
	for j < len(raw) && (isASCIILetter(raw[j]) || isASCIIDigit(raw[j]) || raw[j] == '-') {
		j++
	}
	tagEnd := strings.IndexByte(raw[i:], '>')
	if tagEnd < 0 {
		tagEnd = len(raw) - i - 1
	}
	tagEnd += i + 1
	if j > nameStart && s.r.FilterTag(lowerASCII(raw[nameStart:j])) {
		s.buf.WriteString("&lt;")
		s.buf.WriteString(raw[i+1 : tagEnd])
	} else {
		s.buf.WriteString(raw[i:tagEnd])
	}
	return tagEnd
}

func lowerASCII(s string) []byte {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return b
}

// escapeText escapes the three bytes that are never safe as literal HTML
// text content. Unlike an HTML attribute value, ordinary text content
// needs no quote escaping, and this renderer leaves "'" unescaped too: a
// bare apostrophe is valid anywhere in HTML text and escaping it produces
// needlessly noisy output.
func escapeText(buf *bytes.Buffer, s string) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteByte(s[i])
		}
	}
}

// escapeAttribute escapes a value destined for inside a double-quoted HTML
// attribute, which additionally requires quotes to be escaped.
func escapeAttribute(buf *bytes.Buffer, s string) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteByte(s[i])
		}
	}
}

// uriSafeRunes holds RFC 3986's reserved and unreserved URI characters
// beyond ASCII letters and digits, which are checked separately.
const uriSafeRunes = `;/?:@&=+$,-_.!~*'()#[]`

func urlHexDigit(x byte) byte {
	switch {
	case x < 0xa:
		return '0' + x
	default:
		return 'A' + x - 0xa
	}
}

// normalizeURI percent-encodes a link or image destination per RFC 3986
// (spec §6.3). A "%" already followed by two hex digits is passed through
// unchanged so a destination that was already percent-encoded in the
// Markdown source round-trips instead of being double-escaped; every other
// byte outside the unreserved/reserved sets is percent-encoded.
func normalizeURI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	skip := 0
	var buf [utf8.UTFMax]byte
	for i, c := range s {
		if skip > 0 {
			skip--
			b.WriteRune(c)
			continue
		}
		switch {
		case c == '%':
			if i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
				skip = 2
				b.WriteByte('%')
			} else {
				b.WriteString("%25")
			}
		case c < 0x80 && (isASCIILetter(byte(c)) || isASCIIDigit(byte(c))) || strings.ContainsRune(uriSafeRunes, c):
			b.WriteRune(c)
		default:
			n := utf8.EncodeRune(buf[:], c)
			for _, bb := range buf[:n] {
				b.WriteByte('%')
				b.WriteByte(urlHexDigit(bb >> 4))
				b.WriteByte(urlHexDigit(bb & 0x0f))
			}
		}
	}
	return b.String()
}
