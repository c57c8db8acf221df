package main

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/mifid-advisor/internal/scorer"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Print the questionnaire catalog as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeCatalog(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(questionsCmd)
}

func writeCatalog(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(scorer.Catalog()); err != nil {
		return eris.Wrap(err, "questions: encode catalog")
	}
	return eris.Wrap(enc.Close(), "questions: flush")
}
