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

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mdcore/commonmark/internal/htmlnorm"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "StrongEmphasis",
			input: "**foo bar**",
			want:  "<p><strong>foo bar</strong></p>\n",
		},
		{
			name:  "HeadingAndBlockQuote",
			input: "# Heading\n\n> quote\n",
			want:  "<h1>Heading</h1>\n<blockquote>\n<p>quote</p>\n</blockquote>\n",
		},
		{
			name:  "ShortcutReferenceLink",
			input: "[foo]\n\n[foo]: /url \"title\"\n",
			want:  `<p><a href="/url" title="title">foo</a></p>` + "\n",
		},
		{
			name:  "FencedCodeBlockWithInfoString",
			input: "```rust\nfn main(){}\n```\n",
			want:  "<pre><code class=\"language-rust\">fn main(){}\n</code></pre>\n",
		},
		{
			name:  "IntrawordUnderscoreDoesNotEmphasize",
			input: "foo___bar___baz",
			want:  "<p>foo___bar___baz</p>\n",
		},
		{
			name:  "LooseList",
			input: "- a\n- b\n\n- c\n",
			want:  "<ul>\n<li>\n<p>a</p>\n</li>\n<li>\n<p>b</p>\n</li>\n<li>\n<p>c</p>\n</li>\n</ul>\n",
		},
		{
			name:  "EmptyInput",
			input: "",
			want:  "",
		},
		{
			name:  "WhitespaceOnlyInput",
			input: "   \n\t\n",
			want:  "",
		},
		{
			name:  "TightList",
			input: "- a\n- b\n",
			want:  "<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n",
		},
		{
			name:  "TightListItemWithNestedList",
			input: "- a\n  - b\n",
			want:  "<ul>\n<li>a\n<ul>\n<li>b</li>\n</ul>\n</li>\n</ul>\n",
		},
		{
			name:  "OrderedListWithStart",
			input: "3. a\n4. b\n",
			want:  "<ol start=\"3\">\n<li>a</li>\n<li>b</li>\n</ol>\n",
		},
		{
			name:  "OrderedListDefaultStartOmitsAttr",
			input: "1. a\n2. b\n",
			want:  "<ol>\n<li>a</li>\n<li>b</li>\n</ol>\n",
		},
		{
			name:  "HardBreakFromTrailingSpaces",
			input: "foo  \nbar\n",
			want:  "<p>foo<br />\nbar</p>\n",
		},
		{
			name:  "SoftBreak",
			input: "foo\nbar\n",
			want:  "<p>foo\nbar</p>\n",
		},
		{
			name:  "CodeSpan",
			input: "`foo & <bar>`\n",
			want:  "<p><code>foo &amp; &lt;bar&gt;</code></p>\n",
		},
		{
			name:  "ImageAltFlattensEmphasis",
			input: "![foo *bar*](/url.png \"t\")\n",
			want:  `<p><img src="/url.png" alt="foo bar" title="t" /></p>` + "\n",
		},
		{
			name:  "RawInlineHTMLPassthrough",
			input: "foo <span class=\"x\">bar</span> baz\n",
			want:  "<p>foo <span class=\"x\">bar</span> baz</p>\n",
		},
		{
			name:  "HTMLBlockPassthrough",
			input: "<div>\n*foo*\n</div>\n",
			want:  "<div>\n*foo*\n</div>\n",
		},
		{
			name:  "ThematicBreak",
			input: "---\n",
			want:  "<hr />\n",
		},
		{
			name:  "LinkDestinationPercentEncoded",
			input: "[a](/f%20oo)\n",
			want:  `<p><a href="/f%20oo">a</a></p>` + "\n",
		},
		{
			name:  "LinkDestinationWithUnicode",
			input: "[a](/café)\n",
			want:  `<p><a href="/caf%C3%A9">a</a></p>` + "\n",
		},
		{
			name:  "TrailingNewlineNotRequired",
			input: "foo",
			want:  "<p>foo</p>\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := string(ToHTML([]byte(test.input)))
			if got != test.want {
				t.Errorf("ToHTML(%q) = %q; want %q", test.input, got, test.want)
			}
		})
	}
}

func TestRendererIgnoreRaw(t *testing.T) {
	r := &Renderer{IgnoreRaw: true}
	got := string(r.Render(Parse([]byte("foo <span>bar</span> baz\n"))))
	want := "<p>foo bar baz</p>\n"
	if got != want {
		t.Errorf("Render with IgnoreRaw = %q; want %q", got, want)
	}
}

func TestRendererFilterTagGFM(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "ScriptTagEscaped",
			input: "foo <script>alert(1)</script> bar\n",
			want:  "<p>foo &lt;script>alert(1)&lt;/script> bar</p>\n",
		},
		{
			name:  "UnfilteredTagPassesThrough",
			input: "foo <span>bar</span> baz\n",
			want:  "<p>foo <span>bar</span> baz</p>\n",
		},
		{
			name:  "FilteredBlockTagEscaped",
			input: "<title>\nfoo\n</title>\n",
			want:  "&lt;title>\nfoo\n&lt;/title>\n",
		},
	}
	r := &Renderer{FilterTag: FilterTagGFM}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := string(r.Render(Parse([]byte(test.input))))
			if got != test.want {
				t.Errorf("Render(%q) = %q; want %q", test.input, got, test.want)
			}
		})
	}
}

// TestToHTMLNormalizedEquivalence compares rendered output to its expected
// HTML after normalization, for cases where attribute order or incidental
// whitespace is not itself part of what's being asserted.
func TestToHTMLNormalizedEquivalence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "AutolinkEmail",
			input: "<foo@bar.example.com>\n",
			want:  `<p><a href="mailto:foo@bar.example.com">foo@bar.example.com</a></p>` + "\n",
		},
		{
			name:  "ThematicBreakVoidTag",
			input: "***\n",
			want:  "<hr>\n",
		},
		{
			name:  "LinkWithTitleAttributeOrderIndependent",
			input: `[a](/url "t")` + "\n",
			want:  `<p><a title="t" href="/url">a</a></p>` + "\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := htmlnorm.Normalize(ToHTML([]byte(test.input)))
			want := htmlnorm.Normalize([]byte(test.want))
			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ToHTML(%q) normalized mismatch (-want +got):\n%s", test.input, diff)
			}
		})
	}
}

func TestNormalizeURI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "Plain", input: "/url", want: "/url"},
		{name: "Space", input: "/f oo", want: "/f%20oo"},
		{name: "AlreadyEncodedPassesThrough", input: "/f%20oo", want: "/f%20oo"},
		{name: "BarePercentEscaped", input: "/100%", want: "/100%25"},
		{name: "UnicodePercentEncoded", input: "/café", want: "/caf%C3%A9"},
		{name: "ReservedCharsUntouched", input: "/a/b?x=1&y=2#frag", want: "/a/b?x=1&y=2#frag"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := normalizeURI(test.input); got != test.want {
				t.Errorf("normalizeURI(%q) = %q; want %q", test.input, got, test.want)
			}
		})
	}
}
