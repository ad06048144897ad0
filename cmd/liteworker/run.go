package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jirevwe/liteworker"
	"github.com/jirevwe/liteworker/queue/memory"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var errRejectedLine = errors.New("rejected line")

// shout trims a line, drops it when blank, rejects it when it starts with
// "!" and upper-cases it otherwise.
func shout(_ context.Context, line string, _ ...any) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", liteworker.ErrSuppress
	}

	if strings.HasPrefix(line, "!") {
		return "", fmt.Errorf("%w: %q", errRejectedLine, line)
	}

	return strings.ToUpper(line), nil
}

func printer(w io.Writer) liteworker.SinkFunc[string] {
	return func(_ context.Context, line string, _ ...any) error {
		_, err := fmt.Fprintln(w, line)
		return err
	}
}

func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Transform stdin lines with a worker pool and print the results",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := newApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, a.Close()) }()

			return a.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func (a *app) run(ctx context.Context, in io.Reader, out io.Writer) (err error) {
	lines := memory.New[string](a.cfg.Workers.QueueSize)
	results := memory.New[string](a.cfg.Workers.QueueSize)

	opts := []liteworker.Option{
		liteworker.WithLogger(a.logger),
		liteworker.WithPollTimeout(a.cfg.Workers.PollTimeout),
		liteworker.WithRetry(a.cfg.Retry.Attempts, a.cfg.Retry.Backoff),
	}
	if a.store != nil {
		opts = append(opts, liteworker.WithDeadLetter(a.store))
	}

	transformers, err := liteworker.NewTransformPool(a.cfg.Workers.Count, shout, lines, results, append(opts, liteworker.WithName("transformer"))...)
	if err != nil {
		return err
	}

	// a single printer keeps writes to out serialised
	printers, err := liteworker.NewSinkPool(1, printer(out), results, append(opts, liteworker.WithName("printer"))...)
	if err != nil {
		return err
	}

	transformers.Start()
	printers.Start()
	defer func() {
		err = multierr.Combine(err, transformers.Stop(), printers.Stop())

		t, p := transformers.Stats(), printers.Stats()
		a.logger.Info("workers stopped",
			"read", t.Processed,
			"printed", p.Processed-p.Failed,
			"suppressed", t.Suppressed,
			"failed", t.Failed+p.Failed,
		)
	}()

	read := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			if addErr := transformers.AddWork(ctx, scanner.Text()); addErr != nil {
				read <- addErr
				return
			}
		}
		read <- scanner.Err()
	}()

	select {
	case <-ctx.Done():
		return nil
	case err = <-read:
		if err != nil {
			return fmt.Errorf("cannot read input: %w", err)
		}
	}

	// every line read is transformed, then every result printed
	if err = lines.Join(ctx); err == nil {
		err = results.Join(ctx)
	}

	// interrupted, the deferred stop leaves the rest unconsumed
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
