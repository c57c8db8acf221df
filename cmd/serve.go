package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/mifid-advisor/internal/advisor"
	"github.com/sells-group/mifid-advisor/internal/audit"
	"github.com/sells-group/mifid-advisor/internal/resilience"
	"github.com/sells-group/mifid-advisor/internal/server"
	"github.com/sells-group/mifid-advisor/internal/session"
	"github.com/sells-group/mifid-advisor/pkg/anthropic"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP advisor, scoring and audit server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		log, err := audit.Open(ctx, cfg.Audit)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := log.Close(); cerr != nil {
				zap.L().Warn("close audit log", zap.Error(cerr))
			}
		}()

		var opts []anthropic.ClientOption
		if cfg.Anthropic.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.Anthropic.BaseURL))
		}
		if cfg.Anthropic.TimeoutSecs > 0 {
			opts = append(opts, anthropic.WithTimeout(time.Duration(cfg.Anthropic.TimeoutSecs)*time.Second))
		}
		client := anthropic.NewClient(cfg.Anthropic.Key, opts...)

		sessions := session.NewStore(
			session.WithTTL(time.Duration(cfg.Server.Sessions.TTLMinutes)*time.Minute),
			session.WithMaxSessions(cfg.Server.Sessions.MaxSessions),
		)
		adv := advisor.New(client, resilience.NewGuard("anthropic", cfg.Anthropic.Retry), log, sessions, advisor.Options{
			Model:         cfg.Anthropic.Model,
			MaxTokens:     cfg.Anthropic.MaxTokens,
			HistoryWindow: cfg.Anthropic.HistoryWindow,
		})

		srv := server.New(server.Options{
			Server:    cfg.Server,
			AccessKey: cfg.Audit.AccessKey,
			LogSource: auditSource(),
		}, adv, sessions, log)

		return srv.ListenAndServe(ctx, cfg.Server.Port)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// auditSource names the configured audit store for /logs.
func auditSource() string {
	switch cfg.Audit.Driver {
	case "postgres":
		return "postgres"
	case "sqlite":
		return "sqlite:" + cfg.Audit.Path
	default:
		return cfg.Audit.Path
	}
}
