// Command agridoc renders informal assistant replies from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgallion1/agridoc/internal/assistant"
)

// app carries the command dependencies so tests can swap them.
type app struct {
	v      *viper.Viper
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger

	newGenerator func(ctx context.Context, cfg assistant.GeminiConfig) (assistant.Generator, error)
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		v:      viper.New(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		log:    slog.New(slog.NewTextHandler(stderr, nil)),
		newGenerator: func(ctx context.Context, cfg assistant.GeminiConfig) (assistant.Generator, error) {
			return assistant.NewGeminiClient(ctx, cfg)
		},
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "agridoc",
		Short:         "Turn informal assistant replies into structured documents.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if a.v.GetBool("verbose") {
				level = slog.LevelDebug
			}
			a.log = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringP("format", "f", "terminal", "output format: json, yaml, html, markdown, text, terminal")
	root.PersistentFlags().StringP("dialect", "d", "full", "marker dialect: full, qa, info, history")
	root.PersistentFlags().IntP("width", "w", 0, "word wrap width for terminal output (0 = 80)")
	root.PersistentFlags().String("style", "", "glamour style for terminal output (default notty)")
	root.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
	for _, name := range []string{"format", "dialect", "width", "style", "verbose"} {
		if err := a.v.BindPFlag(name, root.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	a.v.SetEnvPrefix("agridoc")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	// The Gemini settings use the same variable names as the server.
	_ = a.v.BindEnv("gemini-api-key", "GEMINI_API_KEY")
	_ = a.v.BindEnv("gemini-model", "GEMINI_MODEL")
	_ = a.v.BindEnv("gemini-pro-model", "GEMINI_PRO_MODEL")
	_ = a.v.BindEnv("gemini-base-url", "GEMINI_BASE_URL")

	root.AddCommand(a.renderCmd(), a.askCmd())
	return root
}

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := a.rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
