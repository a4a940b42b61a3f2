// Package fields renders the string values of a JSON reply as documents.
package fields

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/agridoc/internal/document"
	"github.com/dgallion1/agridoc/internal/parser"
)

// leaf is a string value found in the decoded payload, with a setter that
// puts its rendered document back in place.
type leaf struct {
	text string
	set  func(document.Document)
}

// RenderFields decodes raw as any JSON value and replaces every string in it
// with its parsed Document. Objects and arrays keep their shape; numbers,
// booleans and null are left untouched. Numbers keep their original text.
func RenderFields(ctx context.Context, raw []byte, opts parser.Options) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode json: trailing data after value")
	}

	var root any = v
	var leaves []leaf
	collect(v, func(d document.Document) { root = d }, &leaves)

	docs := make([]document.Document, len(leaves))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, l := range leaves {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docs[i] = parser.ParseWith(l.text, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, l := range leaves {
		l.set(docs[i])
	}
	return root, nil
}

func collect(v any, set func(document.Document), out *[]leaf) {
	switch t := v.(type) {
	case string:
		*out = append(*out, leaf{text: t, set: set})
	case map[string]any:
		for k, child := range t {
			collect(child, func(d document.Document) { t[k] = d }, out)
		}
	case []any:
		for i, child := range t {
			collect(child, func(d document.Document) { t[i] = d }, out)
		}
	}
}
