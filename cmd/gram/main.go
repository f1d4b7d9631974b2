package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vito/gram/pkg/chart"
	"github.com/vito/gram/pkg/gram"
	"github.com/vito/gram/pkg/sem"
)

// Config holds the application configuration
type Config struct {
	Debug       bool
	Grammar     string
	AllReadings bool
	Tree        bool
	Watch       bool
	LSP         bool
	LSPLogFile  string
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "gram [flags] [sentence]",
		Short: "Feature-grammar parser with lambda-calculus semantics",
		Long: `Gram parses token sequences under a feature-based unification grammar
and composes each parse into one or more beta-reduced logical forms.`,
		Example: `  # Parse a sentence and print one reading per parse
  gram -g grammar.gram "a dog barks"

  # Enumerate every quantifier scope ordering
  gram -g grammar.gram --all "every dog chases a cat"

  # Parse one sentence per stdin line
  cat sentences.txt | gram -g grammar.gram

  # Re-parse whenever the grammar file changes
  gram -g grammar.gram --watch "a dog barks"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.LSP {
				return runLSP(cmd.Context(), cfg)
			}
			if len(args) == 1 {
				if cfg.Watch {
					return runWatch(cmd.Context(), cfg, args[0])
				}
				return run(cmd.Context(), cfg, args[0])
			}
			return runBatch(cmd.Context(), cfg)
		},
	}

	rootCmd.Flags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.Flags().StringVarP(&cfg.Grammar, "grammar", "g", "", "Path to the grammar file (defaults to gram.toml's grammar)")
	rootCmd.Flags().BoolVar(&cfg.AllReadings, "all", false, "Enumerate every binding-operator scope ordering")
	rootCmd.Flags().BoolVar(&cfg.Tree, "tree", false, "Print the derivation tree of each parse")
	rootCmd.Flags().BoolVar(&cfg.Watch, "watch", false, "Re-parse whenever the grammar file changes")
	rootCmd.Flags().BoolVar(&cfg.LSP, "lsp", false, "Run in Language Server Protocol mode")
	rootCmd.Flags().StringVar(&cfg.LSPLogFile, "lsp-log-file", "", "Path to LSP log file (stderr if not specified)")

	ctx := context.Background()
	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func setupLogging(cfg Config, dest io.Writer) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(dest, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// grammarPath resolves the grammar file from the flag or the nearest
// gram.toml.
func grammarPath(cfg *Config) (string, error) {
	if cfg.Grammar != "" {
		return cfg.Grammar, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	cfgPath, project, err := gram.FindProjectConfig(cwd)
	if err != nil {
		return "", err
	}
	if project == nil || project.Grammar == "" {
		return "", fmt.Errorf("no grammar file: pass --grammar or add one to gram.toml")
	}
	if project.AllReadings {
		cfg.AllReadings = true
	}
	return filepath.Join(filepath.Dir(cfgPath), project.Grammar), nil
}

func run(ctx context.Context, cfg Config, sentence string) error {
	setupLogging(cfg, os.Stderr)

	path, err := grammarPath(&cfg)
	if err != nil {
		return err
	}
	g, err := gram.LoadFile(path)
	if err != nil {
		return err
	}
	out, err := parseSentence(ctx, cfg, g, sentence)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// parseSentence parses one sentence and renders its readings.
func parseSentence(ctx context.Context, cfg Config, g *gram.Grammar, sentence string) (string, error) {
	tokens := strings.Fields(sentence)
	ch, err := chart.Parse(ctx, g, tokens)
	if err != nil {
		return "", err
	}
	parses := ch.Parses(g.Start)
	if len(parses) == 0 {
		return "no parse\n", nil
	}

	var sb strings.Builder
	for i, parse := range parses {
		if len(parses) > 1 {
			fmt.Fprintf(&sb, "parse %d:\n", i+1)
		}
		if cfg.Tree {
			sb.WriteString(parse.Tree())
		}
		if cfg.Debug {
			slog.DebugContext(ctx, "parse feature structure",
				"parse", i+1, "fs", pretty.Sprint(parse.Feat))
		}
		if cfg.AllReadings {
			readings, err := sem.Readings(parse)
			if err != nil {
				return "", err
			}
			for j, reading := range readings {
				if len(readings) > 1 {
					fmt.Fprintf(&sb, "%d. %s\n", j+1, reading)
				} else {
					fmt.Fprintf(&sb, "%s\n", reading)
				}
			}
		} else {
			reading, err := sem.Reading(parse)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&sb, "%s\n", reading)
		}
	}
	return sb.String(), nil
}

// runBatch parses one sentence per stdin line, concurrently. Each sentence
// owns its chart, so the parses are independent; output is kept in input
// order.
func runBatch(ctx context.Context, cfg Config) error {
	setupLogging(cfg, os.Stderr)

	path, err := grammarPath(&cfg)
	if err != nil {
		return err
	}
	g, err := gram.LoadFile(path)
	if err != nil {
		return err
	}

	var sentences []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			sentences = append(sentences, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	outputs := make([]string, len(sentences))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i, sentence := range sentences {
		eg.Go(func() error {
			out, err := parseSentence(egCtx, cfg, g, sentence)
			if err != nil {
				return fmt.Errorf("parsing %q: %w", sentence, err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	for i, out := range outputs {
		if len(sentences) > 1 {
			fmt.Printf("> %s\n", sentences[i])
		}
		fmt.Print(out)
	}
	return nil
}
