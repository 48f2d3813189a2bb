// Command cmsctl lists and reorders content from the command line through
// the optimistic reorder client.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/cms/backend/internal/client/reorder"
	"github.com/cms/backend/internal/domain/ordering"
	"github.com/cms/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type options struct {
	server  string
	token   string
	scope   string
	cas     bool
	verbose bool
	timeout time.Duration
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "cmsctl",
		Short:         "List and reorder CMS content",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.server, "server", envOr("CMS_SERVER", "http://localhost:8080"), "API base URL (env CMS_SERVER)")
	flags.StringVar(&opts.token, "token", os.Getenv("CMS_TOKEN"), "Bearer token (env CMS_TOKEN)")
	flags.StringVar(&opts.scope, "scope", "", "Page key for product-pages and solution-pages")
	flags.BoolVar(&opts.cas, "cas", false, "Reject the move if the scope changed since it was listed")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log requests and outcomes")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newMoveCommand(opts, "move-up", "Swap an entry with the one before it",
		func(l *reorder.List, id uuid.UUID, _ []string) (ordering.Command, error) { return l.MoveUp(id) }))
	cmd.AddCommand(newMoveCommand(opts, "move-down", "Swap an entry with the one after it",
		func(l *reorder.List, id uuid.UUID, _ []string) (ordering.Command, error) { return l.MoveDown(id) }))
	cmd.AddCommand(newMoveToCommand(opts))
	return cmd
}

func newListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list <resource>",
		Short: "Print a scope in display order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), l.Entries(), l.Version())
			return nil
		},
	}
}

type moveFunc func(l *reorder.List, id uuid.UUID, extra []string) (ordering.Command, error)

func newMoveCommand(opts *options, use, short string, move moveFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <resource> <id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runMove(cmd, args[0], args[1], nil, move)
		},
	}
}

func newMoveToCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "move-to <resource> <id> <index>",
		Short: "Move an entry to a zero-based index and renumber the scope",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runMove(cmd, args[0], args[1], args[2:],
				func(l *reorder.List, id uuid.UUID, extra []string) (ordering.Command, error) {
					index, err := strconv.Atoi(extra[0])
					if err != nil {
						return ordering.Command{}, fmt.Errorf("invalid index %q", extra[0])
					}
					return l.MoveTo(id, index)
				})
		},
	}
}

func (o *options) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	cfg := logger.DefaultConfig()
	cfg.Level = "debug"
	cfg.Output = "stderr"
	log, err := logger.New(cfg)
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func (o *options) load(ctx context.Context, resource string) (*reorder.List, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	transport := reorder.NewHTTPClient(o.server,
		reorder.WithToken(o.token),
		reorder.WithTimeout(o.timeout),
	)
	l := reorder.NewList(transport, resource, o.scope,
		reorder.WithCompareAndSwap(o.cas),
		reorder.WithPersistTimeout(o.timeout),
		reorder.WithLogger(o.logger()),
	)
	if err := l.Load(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

func (o *options) runMove(cmd *cobra.Command, resource, rawID string, extra []string, move moveFunc) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid id %q", rawID)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	l, err := o.load(ctx, resource)
	if err != nil {
		return err
	}
	if _, err := move(l, id, extra); err != nil {
		return err
	}

	select {
	case r := <-l.Results():
		if r.Err != nil {
			return fmt.Errorf("move rejected, order unchanged: %w", r.Err)
		}
		printEntries(cmd.OutOrStdout(), r.Entries, r.Version)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func printEntries(w io.Writer, entries []ordering.Entry, version string) {
	for i, e := range entries {
		fmt.Fprintf(w, "%3d  %s  %d\n", i, e.ID, e.SortOrder)
	}
	fmt.Fprintf(w, "version %s\n", version)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
