package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/morselive/internal/heatmap"
	"github.com/verte-zerg/morselive/internal/logging"
	"github.com/verte-zerg/morselive/internal/loop"
	"github.com/verte-zerg/morselive/internal/protocol"
	"github.com/verte-zerg/morselive/internal/router"
	"github.com/verte-zerg/morselive/internal/transport"
)

const defaultQueryTimeout = 5 * time.Second

var queryTimeout time.Duration

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the trainer's session status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQueryCmd(cmd, protocol.RequestStatus(), protocol.KindStatus, func(w io.Writer, msg protocol.Inbound) error {
				return writeStatus(w, msg.(protocol.Status))
			})
		},
	}
	cmd.Flags().DurationVar(&queryTimeout, "timeout", defaultQueryTimeout, "how long to wait for the trainer")
	return cmd
}

func newProbsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probs",
		Short: "Print the trainer's per-character error probabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			color := term.IsTerminal(int(os.Stdout.Fd()))
			return runQueryCmd(cmd, protocol.RequestProbs(), protocol.KindProbs, func(w io.Writer, msg protocol.Inbound) error {
				return heatmap.WriteTable(w, msg.(protocol.Probs).Data, color)
			})
		},
	}
	cmd.Flags().DurationVar(&queryTimeout, "timeout", defaultQueryTimeout, "how long to wait for the trainer")
	return cmd
}

func runQueryCmd(cmd *cobra.Command, request protocol.Outbound, kind string, write func(io.Writer, protocol.Inbound) error) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithTimeout(cmd.Context(), queryTimeout)
	defer cancel()
	url := transport.Endpoint(cfg.Host, cfg.Port)
	answer, err := query(ctx, loop.NewQueue(64), transport.Options{URL: url, Logger: logger}, request, kind)
	if err != nil {
		return fmt.Errorf("no %s from %s: %w", kind, url, err)
	}
	return write(cmd.OutOrStdout(), answer)
}

// query connects, sends request once the link is up and waits for the first
// frame of the given kind. Dropped links are redialled until ctx ends.
func query(ctx context.Context, queue *loop.Queue, opts transport.Options, request protocol.Outbound, kind string) (protocol.Inbound, error) {
	opts.Loop = queue
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	var (
		mgr    *transport.Manager
		answer protocol.Inbound
	)
	r := router.New(opts.Logger)
	r.Handle(kind, func(msg protocol.Inbound) { answer = msg })
	mgr = transport.NewManager(opts, transport.Hooks{
		OnOpen:  func() { mgr.Send(request) },
		OnFrame: func(data []byte) { r.Dispatch(data) },
	})
	defer mgr.Close()

	mgr.Connect()
	for answer == nil {
		msg, err := queue.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !mgr.Handle(msg) {
			opts.Logger.Debug("unexpected loop message", zap.Any("msg", msg))
		}
	}
	return answer, nil
}

func writeStatus(w io.Writer, s protocol.Status) error {
	state := "stopped"
	if s.Running {
		state = "running"
	}
	profile := "unknown"
	if s.HasProfile {
		profile = fmt.Sprint(s.Profile)
	}
	_, err := fmt.Fprintf(w, "state:   %s\nspeed:   %d WPM\nprofile: %s\n", state, s.Speed, profile)
	return err
}
