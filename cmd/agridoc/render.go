package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/agridoc/internal/parser"
	"github.com/dgallion1/agridoc/internal/render"
	"github.com/dgallion1/agridoc/internal/source"
)

func (a *app) renderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render [files...]",
		Short: "Render reply text or documents; reads stdin when no file is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRender(cmd.Context(), args)
		},
	}
}

func (a *app) outputSettings() (parser.Options, render.Format, render.Options, error) {
	dialect := a.v.GetString("dialect")
	opts, ok := parser.DialectByName(dialect)
	if !ok {
		return parser.Options{}, "", render.Options{}, fmt.Errorf("unknown dialect %q (want one of %s)",
			dialect, strings.Join(parser.DialectNames(), ", "))
	}
	format, err := render.ParseFormat(a.v.GetString("format"))
	if err != nil {
		return parser.Options{}, "", render.Options{}, err
	}
	return opts, format, render.Options{Width: a.v.GetInt("width"), Style: a.v.GetString("style")}, nil
}

// runRender renders every input concurrently and writes the results in
// argument order.
func (a *app) runRender(ctx context.Context, paths []string) error {
	opts, format, ropts, err := a.outputSettings()
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		raw, err := io.ReadAll(a.stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		return render.Render(a.stdout, parser.ParseWith(string(raw), opts), format, ropts)
	}

	outputs := make([][]byte, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := readInput(path)
			if err != nil {
				return err
			}
			a.log.Debug("rendering", "path", path, "bytes", len(text))
			var buf bytes.Buffer
			if err := render.Render(&buf, parser.ParseWith(text, opts), format, ropts); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			outputs[i] = buf.Bytes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, out := range outputs {
		if len(paths) > 1 && format != render.FormatJSON {
			if i > 0 {
				fmt.Fprintln(a.stdout)
			}
			fmt.Fprintf(a.stdout, "==> %s <==\n", paths[i])
		}
		if _, err := a.stdout.Write(out); err != nil {
			return err
		}
		if len(out) > 0 && out[len(out)-1] != '\n' {
			fmt.Fprintln(a.stdout)
		}
	}
	return nil
}

// readInput returns the marker text for path. Supported document formats go
// through their extractor; anything else is read as reply text.
func readInput(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if !source.IsSupportedExtension(path) {
		raw, err := io.ReadAll(f)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(raw), nil
	}
	ex, err := source.ForFile(path, source.Options{PDFFallbackPdftotext: true})
	if err != nil {
		return "", err
	}
	text, err := ex.Extract(f, path)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}
	return text, nil
}
