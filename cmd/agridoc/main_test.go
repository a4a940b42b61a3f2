package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/agridoc/internal/assistant"
	"github.com/dgallion1/agridoc/internal/document"
)

type stubGenerator struct {
	deltas []string
	got    assistant.Prompt
}

func (g *stubGenerator) Generate(ctx context.Context, p assistant.Prompt) (string, error) {
	g.got = p
	return strings.Join(g.deltas, ""), nil
}

func (g *stubGenerator) Stream(ctx context.Context, p assistant.Prompt, onDelta func(string)) error {
	g.got = p
	for _, d := range g.deltas {
		onDelta(d)
	}
	return nil
}

func run(t *testing.T, stdin string, gen assistant.Generator, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(strings.NewReader(stdin), &stdout, &stderr)
	a.newGenerator = func(ctx context.Context, cfg assistant.GeminiConfig) (assistant.Generator, error) {
		return gen, nil
	}
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestRender_Stdin(t *testing.T) {
	out, err := run(t, "## Soil\n* loam\n* clay", nil, "render", "--format", "json")
	require.NoError(t, err)

	var doc document.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []document.Block{
		document.NewHeading(2, "Soil", false),
		document.NewList(false, "loam", "clay"),
	}, doc.Blocks)
}

func TestRender_DialectFlag(t *testing.T) {
	out, err := run(t, "## Title\n* bullet", nil, "render", "-f", "text", "-d", "qa")
	require.NoError(t, err)
	assert.Contains(t, out, "## Title")
}

func TestRender_FilesKeepArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	names := []string{"b.txt", "a.md", "c.reply"}
	bodies := []string{"Second file.", "# First\n\n- one\n- two\n", "**Third**"}
	var paths []string
	for i, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte(bodies[i]), 0o644))
		paths = append(paths, p)
	}

	out, err := run(t, "", nil, append([]string{"render", "--format", "text"}, paths...)...)
	require.NoError(t, err)

	iB := strings.Index(out, "==> "+paths[0])
	iA := strings.Index(out, "==> "+paths[1])
	iC := strings.Index(out, "==> "+paths[2])
	require.True(t, iB >= 0 && iA > iB && iC > iA, "outputs out of order:\n%s", out)
	assert.Contains(t, out, "Second file.")
	assert.Contains(t, out, "one")
	assert.Contains(t, out, "Third")
}

func TestRender_MissingFile(t *testing.T) {
	_, err := run(t, "", nil, "render", filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestRender_BadFlags(t *testing.T) {
	_, err := run(t, "x", nil, "render", "--dialect", "gfm")
	assert.ErrorContains(t, err, "unknown dialect")

	_, err = run(t, "x", nil, "render", "--format", "pdf")
	assert.Error(t, err)
}

func TestAsk_UsesKindDialect(t *testing.T) {
	gen := &stubGenerator{deltas: []string{"## Drip", " irrigation\n* Saves water"}}
	out, err := run(t, "", gen, "ask", "info", "drip", "irrigation", "-f", "json", "-l", "hi")
	require.NoError(t, err)

	assert.Equal(t, assistant.KindFarmingInfo, gen.got.Kind)
	assert.Equal(t, "drip irrigation", gen.got.Topic)
	assert.Equal(t, "hi", gen.got.Language)

	var doc document.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, document.KindHeading, doc.Blocks[0].Kind)
	// Info replies do not use "*" bullets.
	assert.Equal(t, document.KindParagraph, doc.Blocks[1].Kind)
}

func TestAsk_Raw(t *testing.T) {
	gen := &stubGenerator{deltas: []string{"Water ", "early."}}
	out, err := run(t, "", gen, "ask", "chat", "hello", "--raw")
	require.NoError(t, err)
	assert.Equal(t, "Water early.\n", out)
	assert.Equal(t, "hello", gen.got.Message)
}

func TestAsk_Calendar(t *testing.T) {
	reply := "```json\n" + `{"summary":"Kharif in **Punjab**","recommendations":[{` +
		`"crop_name":"Rice","sowing_time":"June","harvesting_time":"October",` +
		`"key_tips":["**Transplant** early"],"market_demand":"High",` +
		`"water_requirement":"High","soil_suitability":"Clay loam"}]}` + "\n```"
	gen := &stubGenerator{deltas: []string{reply}}

	out, err := run(t, "", gen, "ask", "calendar", "Punjab", "Kharif")
	require.NoError(t, err)
	assert.Equal(t, "Punjab", gen.got.State)
	assert.Equal(t, "Kharif", gen.got.Season)

	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Contains(t, v, "summary")
	assert.Contains(t, v, "recommendations")
}

func TestAsk_CalendarNeedsStateAndSeason(t *testing.T) {
	_, err := run(t, "", &stubGenerator{}, "ask", "calendar", "Punjab")
	assert.ErrorContains(t, err, "state")
}

func TestAsk_UnknownKind(t *testing.T) {
	_, err := run(t, "", &stubGenerator{}, "ask", "poem", "rain")
	assert.ErrorContains(t, err, "unknown kind")
}
