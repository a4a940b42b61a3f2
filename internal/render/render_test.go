package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/agridoc/internal/document"
	"github.com/dgallion1/agridoc/internal/parser"
)

const sample = "# Overview\n" +
	"Tomatoes need **full** sun.\n" +
	"* Water daily\n" +
	"* Mulch the base\n" +
	"\n" +
	"* Second list\n" +
	"5. Prepare soil\n" +
	"9. Plant seedlings\n" +
	"**Harvest in 60 days**"

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, parser.Parse(sample)))

	want := "<h2>Overview</h2>\n" +
		"<p>Tomatoes need <strong>full</strong> sun.</p>\n" +
		"<ul>\n<li>Water daily</li>\n<li>Mulch the base</li>\n</ul>\n" +
		"<ul>\n<li>Second list</li>\n</ul>\n" +
		"<ol>\n<li>Prepare soil</li>\n<li>Plant seedlings</li>\n</ol>\n" +
		"<h3>Harvest in 60 days</h3>\n"
	assert.Equal(t, want, buf.String())
}

func TestHTML_EscapesText(t *testing.T) {
	doc := parser.Parse("## <b>x</b> & y\n* a < b\nuse \\* and **\"q\"**")
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, doc))

	out := buf.String()
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "&lt;b&gt;x&lt;/b&gt; &amp; y")
	assert.Contains(t, out, `use \* and <strong>&quot;q&quot;</strong>`)

	// The fragment is well formed: every text node survives a parse.
	root, err := html.Parse(strings.NewReader(out))
	require.NoError(t, err)
	var texts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
			texts = append(texts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	assert.Equal(t, []string{"<b>x</b> & y", "a < b", `use \* and `, `"q"`}, texts)
}

func TestHTML_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, parser.Parse("")))
	assert.Empty(t, buf.String())
}

func TestMarkdown_RoundTrip(t *testing.T) {
	inputs := []string{
		sample,
		"",
		"plain\n** **\nx **** y\n****x**",
		"## \n### Pests\n1.\ttabbed\n1.  spaced\n* \n* **Neem** oil",
		"# **x**\n**  padded**\nline with trailing   ",
	}
	for _, in := range inputs {
		for _, opts := range []parser.Options{parser.Full, parser.QADialect, parser.InfoDialect, parser.HistoryDialect} {
			doc := parser.ParseWith(in, opts)
			again := parser.ParseWith(Markdown(doc), opts)
			assert.Equal(t, doc, again, "round trip of %q with %+v", in, opts)
		}
	}
}

func TestMarkdown_Canonical(t *testing.T) {
	want := "## Overview\n\n" +
		"Tomatoes need **full** sun.\n\n" +
		"* Water daily\n* Mulch the base\n\n" +
		"* Second list\n\n" +
		"1. Prepare soil\n2. Plant seedlings\n\n" +
		"**Harvest in 60 days**"
	assert.Equal(t, want, Markdown(parser.Parse(sample)))
}

func TestJSONAndYAML(t *testing.T) {
	doc := parser.Parse(sample)

	var jb bytes.Buffer
	require.NoError(t, JSON(&jb, doc))
	var fromJSON document.Document
	require.NoError(t, json.Unmarshal(jb.Bytes(), &fromJSON))
	assert.Equal(t, doc, fromJSON)

	var yb bytes.Buffer
	require.NoError(t, YAML(&yb, doc))
	assert.Contains(t, yb.String(), "kind: heading")
	assert.Contains(t, yb.String(), "from_bold: true")
	var fromYAML document.Document
	require.NoError(t, yaml.Unmarshal(yb.Bytes(), &fromYAML))
	assert.Equal(t, doc, fromYAML)
}

func TestTerminal(t *testing.T) {
	out, err := Terminal(parser.Parse(sample), Options{Width: 60})
	require.NoError(t, err)
	for _, s := range []string{"Overview", "Water daily", "Plant seedlings", "Harvest in 60 days"} {
		assert.Contains(t, out, s)
	}

	empty, err := Terminal(document.Document{}, Options{})
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = Terminal(parser.Parse("x"), Options{Style: "no-such-style"})
	assert.Error(t, err)
}

func TestTerminal_LiteralTextStaysLiteral(t *testing.T) {
	doc := parser.Parse("- dash is a paragraph\n> quote paragraph\n* item with <b>x</b>\n" +
		"1) not a list\n`tick` and _under_ [link](x)\n# **x**")
	out, err := Terminal(doc, Options{Width: 80})
	require.NoError(t, err)

	for _, s := range []string{
		"- dash is a paragraph",
		"> quote paragraph",
		"item with <b>x</b>",
		"1) not a list",
		"`tick` and _under_ [link](x)",
		"**x**",
	} {
		assert.Contains(t, out, s)
	}
}

func TestEscapeCommonMark(t *testing.T) {
	tests := []struct {
		in         string
		blockStart bool
		want       string
	}{
		{"plain words", true, "plain words"},
		{"- dash", true, `\- dash`},
		{"  > quote", true, `\> quote`},
		{"12. twelve", true, `12\. twelve`},
		{"12. twelve", false, "12. twelve"},
		{"a < b & c", false, `a \< b \& c`},
		{`back\slash`, false, `back\\slash`},
	}
	for _, tt := range tests {
		if got := escapeCommonMark(tt.in, tt.blockStart); got != tt.want {
			t.Errorf("escapeCommonMark(%q, %v): expected %q, got %q", tt.in, tt.blockStart, tt.want, got)
		}
	}
}

func TestTerminal_WidthIsClamped(t *testing.T) {
	doc := parser.Parse("## Soil\nplain **x**\n* a")

	huge, err := Terminal(doc, Options{Width: 50_000_000})
	require.NoError(t, err)
	capped, err := Terminal(doc, Options{Width: MaxWidth})
	require.NoError(t, err)
	assert.Equal(t, capped, huge)
	for _, line := range strings.Split(huge, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), MaxWidth)
	}

	tiny, err := Terminal(doc, Options{Width: 1})
	require.NoError(t, err)
	atMin, err := Terminal(doc, Options{Width: MinWidth})
	require.NoError(t, err)
	assert.Equal(t, atMin, tiny)

	for w := 1; w <= 3*MaxWidth; w += 7 {
		_, err := Terminal(doc, Options{Width: w})
		require.NoError(t, err)
	}
	rendererCache.Range(func(k, _ any) bool {
		key := k.(rendererKey)
		assert.True(t, key.width >= MinWidth && key.width <= MaxWidth, "cached width %d", key.width)
		return true
	})
}

func TestTerminal_RendererCachedPerWidth(t *testing.T) {
	a, err := getRenderer("notty", 42)
	require.NoError(t, err)
	b, err := getRenderer("notty", 42)
	require.NoError(t, err)
	c, err := getRenderer("notty", 43)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestTerminal_Concurrent(t *testing.T) {
	doc := parser.Parse(sample)
	want, err := Terminal(doc, Options{Width: 50})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Terminal(doc, Options{Width: 50})
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":         FormatJSON,
		"JSON":     FormatJSON,
		"yml":      FormatYAML,
		"html":     FormatHTML,
		"md":       FormatMarkdown,
		"txt":      FormatText,
		" ansi ":   FormatTerminal,
		"terminal": FormatTerminal,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestRender_Dispatch(t *testing.T) {
	doc := parser.Parse("## Soil\n* loam")
	tests := []struct {
		format Format
		want   string
	}{
		{FormatMarkdown, "## Soil\n\n* loam"},
		{FormatText, "Soil\nloam"},
		{FormatHTML, "<h2>Soil</h2>\n<ul>\n<li>loam</li>\n</ul>\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, doc, tt.format, Options{}))
		assert.Equal(t, tt.want, buf.String(), string(tt.format))
	}
	assert.Error(t, Render(&bytes.Buffer{}, doc, Format("bogus"), Options{}))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Equal(t, "text/html; charset=utf-8", FormatHTML.ContentType())
	assert.Equal(t, "text/plain; charset=utf-8", FormatTerminal.ContentType())
}
