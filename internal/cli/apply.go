package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/filterchain/internal/config"
	"github.com/hupe1980/filterchain/internal/diff"
	"github.com/hupe1980/filterchain/internal/logging"
	"github.com/hupe1980/filterchain/internal/output"
	"github.com/hupe1980/filterchain/internal/watch"
	"github.com/hupe1980/filterchain/pkg/filterchain"
)

type applyOptions struct {
	chainFile string
	inputFile string
	outFile   string
	showDiff  bool
	watchMode bool
	debounce  time.Duration
}

func newApplyCommand() *cobra.Command {
	opts := &applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Run input text through a filter chain",
		Long: `Load a chain spec, build the filter chain, and run the input text
through it. Input is read from --input or stdin; output is written to
--output or stdout.

With --diff, a unified diff between input and output is printed instead
of the output itself. With --watch, the pipeline re-runs whenever the
chain spec or the input file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApply(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.chainFile, "chain", "c", "", "chain spec file (required)")
	f.StringVarP(&opts.inputFile, "input", "i", "", "input file (default: stdin)")
	f.StringVarP(&opts.outFile, "output", "o", "", "output file (default: stdout)")
	f.BoolVar(&opts.showDiff, "diff", false, "print a unified diff between input and output")
	f.BoolVarP(&opts.watchMode, "watch", "w", false, "re-run when the chain spec or input file changes")
	f.DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "quiet period before a watch-triggered re-run")

	_ = cmd.MarkFlagRequired("chain")

	return cmd
}

func runApply(cmd *cobra.Command, opts *applyOptions) error {
	ctx := cmd.Context()

	if opts.watchMode {
		if opts.inputFile == "" {
			return fmt.Errorf("--watch requires --input (stdin cannot be watched)")
		}

		wopts := watch.DefaultOptions()
		wopts.Files = []string{opts.chainFile, opts.inputFile}
		wopts.Debounce = opts.debounce
		wopts.Logger = logging.FromContext(ctx)

		return watch.Run(ctx, wopts, func(runCtx context.Context) (*watch.RunResult, error) {
			return applyOnce(runCtx, cmd, opts)
		})
	}

	_, err := applyOnce(ctx, cmd, opts)

	return err
}

// applyOnce loads the chain spec, runs the input through the chain, and
// writes the result.
func applyOnce(ctx context.Context, cmd *cobra.Command, opts *applyOptions) (*watch.RunResult, error) {
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	chain, err := loadChain(opts.chainFile)
	if err != nil {
		return nil, err
	}

	input, err := readInput(cmd, opts.inputFile)
	if err != nil {
		return nil, err
	}

	logger.Debug("running filter chain",
		slog.String("spec", opts.chainFile),
		slog.Int("filters", chain.Count()),
		slog.Int("inputBytes", len(input)),
	)

	filtered, err := chain.Filter(string(input))
	if err != nil {
		return nil, fmt.Errorf("running filter chain: %w", err)
	}

	result := fmt.Sprint(filtered)

	if opts.showDiff {
		d, diffErr := diff.Compute(string(input), result, diff.DefaultOptions())
		if diffErr != nil {
			return nil, diffErr
		}

		diff.Write(cmd.OutOrStdout(), d, !cfg.NoColor)

		return &watch.RunResult{FilterCount: chain.Count(), Bytes: len(result)}, nil
	}

	if err := writeResult(cmd, opts.outFile, []byte(result), logger); err != nil {
		return nil, err
	}

	return &watch.RunResult{
		FilterCount: chain.Count(),
		Bytes:       len(result),
		OutputPath:  opts.outFile,
	}, nil
}

// loadChain reads and parses a chain spec file and builds the chain.
func loadChain(path string) (*filterchain.Chain, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied path by design
	if err != nil {
		return nil, fmt.Errorf("reading chain spec %q: %w", path, err)
	}

	spec, err := filterchain.LoadSpec(data)
	if err != nil {
		return nil, fmt.Errorf("parsing chain spec %q: %w", path, err)
	}

	chain, err := filterchain.NewFromSpec(spec)
	if err != nil {
		return nil, fmt.Errorf("building chain from %q: %w", path, err)
	}

	return chain, nil
}

// readInput reads the input text from a file, or from stdin when path is
// empty.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // user-supplied path by design
	if err != nil {
		return nil, fmt.Errorf("reading input %q: %w", path, err)
	}

	return data, nil
}

// writeResult writes the filtered output to a file or the command's stdout.
func writeResult(cmd *cobra.Command, path string, data []byte, logger *slog.Logger) error {
	var w output.Writer
	if path == "" {
		w = output.NewStdoutWriter(cmd.OutOrStdout())
	} else {
		w = output.NewFileWriter(path, output.WithLogger(logger))
	}

	return w.Write(data)
}
