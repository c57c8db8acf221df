package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/mifid-advisor/internal/audit"
	"github.com/sells-group/mifid-advisor/internal/mcptool"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve calculate_profile to MCP clients over stdio",
	Long:  "Runs an MCP server on stdin/stdout. Logs go to stderr so they never interleave with the protocol stream.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("mcp"); err != nil {
			return err
		}

		log, err := audit.Open(cmd.Context(), cfg.Audit)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := log.Close(); cerr != nil {
				zap.L().Warn("close audit log", zap.Error(cerr))
			}
		}()

		mcptool.Version = version
		zap.L().Info("starting mcp server", zap.String("version", version))
		return server.ServeStdio(mcptool.New(log))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
