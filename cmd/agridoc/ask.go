package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/agridoc/internal/assistant"
	"github.com/dgallion1/agridoc/internal/fields"
	"github.com/dgallion1/agridoc/internal/parser"
	"github.com/dgallion1/agridoc/internal/render"
)

func (a *app) askCmd() *cobra.Command {
	var language string
	var raw bool
	cmd := &cobra.Command{
		Use:   "ask <kind> <text...>",
		Short: "Ask the assistant and render its reply.",
		Long: `Ask the assistant and render its reply.

Kinds: info <topic>, qa <question>, chat <message>, calendar <state> <season>.
The reply is rendered with the dialect that matches its kind unless --dialect is set.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := promptFromArgs(args, language)
			if err != nil {
				return err
			}
			if !a.v.IsSet("dialect") {
				a.v.Set("dialect", p.Kind.Dialect())
			}
			return a.runAsk(cmd.Context(), p, raw)
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "en", "reply language code")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the reply text as it streams instead of rendering it")
	return cmd
}

func promptFromArgs(args []string, language string) (assistant.Prompt, error) {
	kind, err := assistant.ParseKind(args[0])
	if err != nil {
		return assistant.Prompt{}, err
	}
	rest := args[1:]
	text := strings.Join(rest, " ")
	p := assistant.Prompt{Kind: kind, Language: language}
	switch kind {
	case assistant.KindFarmingInfo:
		p.Topic = text
	case assistant.KindCommunityQA:
		p.Question = text
	case assistant.KindChat:
		p.Message = text
	case assistant.KindCropCalendar:
		if len(rest) != 2 {
			return assistant.Prompt{}, errors.New("calendar needs exactly <state> <season>")
		}
		p.State, p.Season = rest[0], rest[1]
	}
	return p, p.Validate()
}

func (a *app) runAsk(ctx context.Context, p assistant.Prompt, raw bool) error {
	opts, format, ropts, err := a.outputSettings()
	if err != nil {
		return err
	}
	gen, err := a.newGenerator(ctx, assistant.GeminiConfig{
		APIKey:   a.v.GetString("gemini-api-key"),
		Model:    a.v.GetString("gemini-model"),
		ProModel: a.v.GetString("gemini-pro-model"),
		BaseURL:  a.v.GetString("gemini-base-url"),
	})
	if err != nil {
		return err
	}
	if c, ok := gen.(interface{ Close() }); ok {
		defer c.Close()
	}

	start := time.Now()
	var sb strings.Builder
	err = gen.Stream(ctx, p, func(delta string) {
		sb.WriteString(delta)
		if raw {
			fmt.Fprint(a.stdout, delta)
		}
	})
	a.log.Debug("reply finished", "kind", p.Kind, "duration_ms", time.Since(start).Milliseconds(), "bytes", sb.Len())
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	if raw {
		fmt.Fprintln(a.stdout)
		return nil
	}

	text := sb.String()
	if p.Kind.JSONReply() {
		if _, err := assistant.ParseCropCalendar(text); err != nil {
			return err
		}
		v, err := fields.RenderFields(ctx, []byte(assistant.StripCodeFence(text)), opts)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return render.Render(a.stdout, parser.ParseWith(text, opts), format, ropts)
}
