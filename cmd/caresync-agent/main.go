// caresync-agent is a headless client of the sync core: it keeps a local
// replica reconciled against the server of record and prints change
// signals as they fire. UIs embed the same components; the agent exists
// to run and observe the sync loop without one.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/caresync/caresync/internal/config"
	"github.com/caresync/caresync/internal/domain/chat"
	"github.com/caresync/caresync/internal/platform/phi"
	"github.com/caresync/caresync/internal/realtime"
	"github.com/caresync/caresync/internal/sync/api"
	"github.com/caresync/caresync/internal/sync/auditlog"
	"github.com/caresync/caresync/internal/sync/engine"
	"github.com/caresync/caresync/internal/sync/poller"
	syncsignal "github.com/caresync/caresync/internal/sync/signal"
	"github.com/caresync/caresync/internal/sync/store"
)

func main() {
	var (
		token     string
		room      string
		actorID   string
		actorName string
	)

	rootCmd := &cobra.Command{
		Use:   "caresync-agent",
		Short: "Headless sync client",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(token, room, actorID, actorName)
		},
	}
	rootCmd.Flags().StringVar(&token, "token", "", "Bearer token for the server of record")
	rootCmd.Flags().StringVar(&room, "room", "", "Room to join on the real-time channel (patient or user id)")
	rootCmd.Flags().StringVar(&actorID, "actor-id", "", "Actor id for audit entries")
	rootCmd.Flags().StringVar(&actorName, "actor-name", "agent", "Actor name for audit entries")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(token, room, actorID, actorName string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	phiSvc, err := phi.NewService(cfg.PHIEncryptionKey, logger)
	if err != nil {
		return err
	}

	st := store.New()
	bus := syncsignal.NewBus()
	remote := api.NewClient(cfg.ServerURL, token)
	eng := engine.New(st, bus, remote, phiSvc, logger)
	p := poller.New(eng, cfg.PollEvery(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, unsubscribe := bus.Subscribe()
	defer unsubscribe()
	go func() {
		for change := range changes {
			logger.Info().
				Str("collection", string(change.Collection)).
				Str("origin", string(change.Origin)).
				Msg("replica changed")
		}
	}()

	p.Start(ctx)
	defer p.Stop()
	logger.Info().Dur("interval", cfg.PollEvery()).Msg("reconciliation started")

	// The push channel shortens sync latency for chat and appointment
	// pings; reconciliation remains authoritative.
	channel := realtime.NewChannel(wsURL(cfg.ServerURL), realtime.Handlers{
		OnMessage: func(_ string, m *chat.Message) {
			eng.ApplyInboundMessage(m)
		},
		OnAppointmentChange: func(_ string) {
			p.Nudge()
		},
	}, logger)
	if err := channel.Connect(ctx); err != nil {
		logger.Warn().Err(err).Msg("real-time channel unavailable, relying on polling")
	} else {
		defer channel.Close()
		if room != "" {
			if err := channel.JoinRoom(room); err != nil {
				logger.Warn().Err(err).Str("room", room).Msg("failed to join room")
			}
		}
	}

	if actorID != "" {
		id, err := uuid.Parse(actorID)
		if err != nil {
			return err
		}
		recorder := auditlog.NewRecorder(eng, id, actorName, logger)
		recorder.AccessedFolder(ctx, "replica", "Local Cache", "agent")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("agent stopping")
	return nil
}

// wsURL derives the websocket endpoint from the HTTP base URL.
func wsURL(serverURL string) string {
	switch {
	case len(serverURL) > 8 && serverURL[:8] == "https://":
		return "wss://" + serverURL[8:] + "/api/v1/ws"
	case len(serverURL) > 7 && serverURL[:7] == "http://":
		return "ws://" + serverURL[7:] + "/api/v1/ws"
	default:
		return serverURL + "/api/v1/ws"
	}
}
