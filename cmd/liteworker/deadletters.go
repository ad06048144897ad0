package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var errNoDeadLetterStore = errors.New("no dead-letter db configured, set dead_letter.db_path or LITEWORKER_DEADLETTER_DB")

func newDeadLettersCmd(configPath *string) *cobra.Command {
	var worker string

	cmd := &cobra.Command{
		Use:   "deadletters",
		Short: "List the items workers failed to process",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := newApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, a.Close()) }()

			return a.listDeadLetters(cmd.Context(), worker, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&worker, "worker", "w", "", "only list letters recorded by this worker")

	return cmd
}

func (a *app) listDeadLetters(ctx context.Context, worker string, out io.Writer) error {
	if a.store == nil {
		return errNoDeadLetterStore
	}

	letters, err := a.store.List(ctx, worker)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWORKER\tFAILED AT\tERROR\tPAYLOAD")
	for _, l := range letters {
		var payload string
		if decodeErr := l.Decode(&payload); decodeErr != nil {
			payload = string(l.Payload)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.Id, l.Worker, l.FailedAt.Format(time.RFC3339), l.Error, payload)
	}

	return tw.Flush()
}
