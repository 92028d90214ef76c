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
	"testing"
)

// renderInlinesForTest is a small test helper that feeds already-parsed inlines through
// the default renderer, since inline shape assertions are easier to read as
// rendered HTML than as a tree dump.
func renderInlinesForTest(raw string, refs ReferenceMap) string {
	s := &renderState{r: new(Renderer)}
	s.renderInlines(parseInlines(raw, refs))
	return s.buf.String()
}

func TestParseInlinesEmphasis(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "SimpleEmphasis", raw: "*foo*", want: "<em>foo</em>"},
		{name: "SimpleStrong", raw: "**foo**", want: "<strong>foo</strong>"},
		{name: "NestedStrongInEmphasis", raw: "*foo **bar** baz*", want: "<em>foo <strong>bar</strong> baz</em>"},
		// spec §8: intraword "_" never emphasizes, an asymmetry from "*".
		{name: "IntrawordUnderscoreModulo3", raw: "foo___bar___baz", want: "foo___bar___baz"},
		{name: "IntrawordAsteriskDoesEmphasize", raw: "foo***bar***baz", want: "foo<em><strong>bar</strong></em>baz"},
		{name: "UnmatchedEmphasisMarkerIsLiteral", raw: "*foo", want: "*foo"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := renderInlinesForTest(test.raw, nil); got != test.want {
				t.Errorf("parseInlines(%q) rendered = %q; want %q", test.raw, got, test.want)
			}
		})
	}
}

func TestParseInlinesCodeSpan(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "Simple", raw: "`foo`", want: "<code>foo</code>"},
		{name: "DoubleBacktickDelimiter", raw: "``foo ` bar``", want: "<code>foo ` bar</code>"},
		{name: "LeadingTrailingSpaceStripped", raw: "` foo `", want: "<code>foo</code>"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := renderInlinesForTest(test.raw, nil); got != test.want {
				t.Errorf("parseInlines(%q) rendered = %q; want %q", test.raw, got, test.want)
			}
		})
	}
}

func TestParseInlinesAutolink(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "AbsoluteURI",
			raw:  "<http://example.com>",
			want: `<a href="http://example.com">http://example.com</a>`,
		},
		{
			name: "Email",
			raw:  "<foo@bar.example.com>",
			want: `<a href="mailto:foo@bar.example.com">foo@bar.example.com</a>`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := renderInlinesForTest(test.raw, nil); got != test.want {
				t.Errorf("parseInlines(%q) rendered = %q; want %q", test.raw, got, test.want)
			}
		})
	}
}

func TestParseInlinesRawHTML(t *testing.T) {
	raw := `foo <span class="x">bar</span> baz`
	want := `foo <span class="x">bar</span> baz`
	if got := renderInlinesForTest(raw, nil); got != want {
		t.Errorf("parseInlines(%q) rendered = %q; want %q", raw, got, want)
	}
}

func TestParseInlinesCharacterReferences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "NamedEntity", raw: "&amp;", want: "&amp;"},
		{name: "DecimalNumeric", raw: "&#65;", want: "A"},
		{name: "HexNumeric", raw: "&#x41;", want: "A"},
		{name: "CopyrightEntity", raw: "&copy;", want: "©"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := renderInlinesForTest(test.raw, nil); got != test.want {
				t.Errorf("parseInlines(%q) rendered = %q; want %q", test.raw, got, test.want)
			}
		})
	}
}

func TestParseInlinesBreaks(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "SoftBreak", raw: "foo\nbar", want: "foo\nbar"},
		{name: "HardBreakTwoSpaces", raw: "foo  \nbar", want: "foo<br />\nbar"},
		{name: "HardBreakBackslash", raw: "foo\\\nbar", want: "foo<br />\nbar"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := renderInlinesForTest(test.raw, nil); got != test.want {
				t.Errorf("parseInlines(%q) rendered = %q; want %q", test.raw, got, test.want)
			}
		})
	}
}

func TestParseInlinesLinks(t *testing.T) {
	refs := ReferenceMap{
		"foo":     LinkDefinition{Destination: "/url", Title: "title", TitlePresent: true},
		"bar baz": LinkDefinition{Destination: "/bar"},
	}
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "Inline",
			raw:  `[link](/uri "title")`,
			want: `<a href="/uri" title="title">link</a>`,
		},
		{
			name: "InlineNoTitle",
			raw:  "[link](/uri)",
			want: `<a href="/uri">link</a>`,
		},
		{
			name: "FullReference",
			raw:  "[link][foo]",
			want: `<a href="/url" title="title">link</a>`,
		},
		{
			name: "CollapsedReference",
			raw:  "[foo][]",
			want: `<a href="/url" title="title">foo</a>`,
		},
		{
			name: "ShortcutReference",
			raw:  "[foo]",
			want: `<a href="/url" title="title">foo</a>`,
		},
		{
			name: "ReferenceLabelCaseAndWhitespaceFold",
			raw:  "[link][Bar   Baz]",
			want: `<a href="/bar">link</a>`,
		},
		{
			name: "UndefinedReferenceIsLiteralText",
			raw:  "[link][nope]",
			want: "[link][nope]",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := renderInlinesForTest(test.raw, refs); got != test.want {
				t.Errorf("parseInlines(%q) rendered = %q; want %q", test.raw, got, test.want)
			}
		})
	}
}

func TestParseInlinesImages(t *testing.T) {
	raw := `![alt text](/img.png "title")`
	want := `<img src="/img.png" alt="alt text" title="title" />`
	if got := renderInlinesForTest(raw, nil); got != want {
		t.Errorf("parseInlines(%q) rendered = %q; want %q", raw, got, want)
	}
}

func TestParseInlinesLinksCannotNest(t *testing.T) {
	raw := "[a [b](/inner) c](/outer)"
	want := `[a <a href="/inner">b</a> c](/outer)`
	if got := renderInlinesForTest(raw, nil); got != want {
		t.Errorf("parseInlines(%q) rendered = %q; want %q", raw, got, want)
	}
}
