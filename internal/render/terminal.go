package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"

	"github.com/dgallion1/agridoc/internal/document"
)

// Wrap columns for terminal output. DefaultWidth applies when Options.Width
// is unset; other widths are clamped to [MinWidth, MaxWidth], which also
// bounds rendererCache to one entry per style and width in that range.
const (
	DefaultWidth = 80
	MinWidth     = 20
	MaxWidth     = 200
)

func clampWidth(w int) int {
	switch {
	case w <= 0:
		return DefaultWidth
	case w < MinWidth:
		return MinWidth
	case w > MaxWidth:
		return MaxWidth
	}
	return w
}

type rendererKey struct {
	style string
	width int
}

// cachedRenderer serialises use of one glamour renderer, which keeps
// per-render state.
type cachedRenderer struct {
	mu sync.Mutex
	tr *glamour.TermRenderer
}

// rendererCache maps rendererKey to *cachedRenderer. Building a renderer
// parses its style, so it is done once per style and width.
var rendererCache sync.Map

func getRenderer(style string, width int) (*cachedRenderer, error) {
	key := rendererKey{style: style, width: width}
	if cached, ok := rendererCache.Load(key); ok {
		return cached.(*cachedRenderer), nil
	}

	base, ok := styles.DefaultStyles[style]
	if !ok {
		return nil, fmt.Errorf("unknown terminal style %q", style)
	}
	cfg := *base
	margin := uint(0)
	cfg.Document.Margin = &margin
	cfg.Document.BlockPrefix = ""
	cfg.Document.BlockSuffix = ""

	tr, err := glamour.NewTermRenderer(
		glamour.WithStyles(cfg),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("create terminal renderer: %w", err)
	}
	actual, _ := rendererCache.LoadOrStore(key, &cachedRenderer{tr: tr})
	return actual.(*cachedRenderer), nil
}

// Terminal renders doc for an ANSI terminal with glamour.
func Terminal(doc document.Document, opts Options) (string, error) {
	if doc.IsEmpty() {
		return "", nil
	}
	style := opts.Style
	if style == "" {
		style = styles.NoTTYStyle
	}
	r, err := getRenderer(style, clampWidth(opts.Width))
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	out, err := r.tr.Render(commonMark(doc))
	r.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("render terminal: %w", err)
	}
	return strings.TrimSpace(out) + "\n", nil
}
