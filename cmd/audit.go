package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/mifid-advisor/internal/audit"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and export the audit trail",
}

var (
	auditTailLast int
	auditTailType string
	auditExportTo string
)

var auditTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print the most recent audit records as JSONL",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("audit"); err != nil {
			return err
		}
		log, err := audit.Open(cmd.Context(), cfg.Audit)
		if err != nil {
			return err
		}
		defer log.Close() //nolint:errcheck

		return runAuditTail(cmd.Context(), log, cmd.OutOrStdout(), auditTailLast, audit.Type(auditTailType))
	},
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export profile calculations to an XLSX spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("audit"); err != nil {
			return err
		}
		log, err := audit.Open(cmd.Context(), cfg.Audit)
		if err != nil {
			return err
		}
		defer log.Close() //nolint:errcheck

		n, err := audit.ExportXLSX(cmd.Context(), log, auditExportTo)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d profile calculations to %s\n", n, auditExportTo)
		return nil
	},
}

func init() {
	auditTailCmd.Flags().IntVar(&auditTailLast, "last", 20, "number of records to print")
	auditTailCmd.Flags().StringVar(&auditTailType, "type", "", "only records of this type (e.g. profile_calculation)")

	auditExportCmd.Flags().StringVar(&auditExportTo, "out", "", "output .xlsx path")
	_ = auditExportCmd.MarkFlagRequired("out")

	auditCmd.AddCommand(auditTailCmd, auditExportCmd)
	rootCmd.AddCommand(auditCmd)
}

func runAuditTail(ctx context.Context, r audit.Reader, w io.Writer, last int, typ audit.Type) error {
	var (
		recs []audit.Record
		err  error
	)
	if typ != "" {
		recs, err = r.ByType(ctx, typ, last)
	} else {
		recs, err = r.Tail(ctx, last)
	}
	if err != nil {
		return eris.Wrap(err, "audit tail")
	}

	enc := json.NewEncoder(w)
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return eris.Wrap(err, "audit tail: write")
		}
	}
	return nil
}
