package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/mifid-advisor/internal/model"
	"github.com/sells-group/mifid-advisor/internal/scorer"
)

var scoreFormat string

var scoreCmd = &cobra.Command{
	Use:   "score [file|-]",
	Short: "Score one answer set",
	Long: `Score a single questionnaire answer set and print the profile.

The input is a JSON object of answers keyed "p1_1".."p6_3", each a 0-based
option index, or an object wrapping it as {"answers": {...}}. Reads stdin
when no file (or "-") is given.

Examples:
  # Human-readable summary
  score answers.json

  # Full result with explanation
  echo '{"p1_1": 1, "p2_1": 3}' | score --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("score"); err != nil {
			return err
		}

		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return eris.Wrapf(err, "score: open %s", args[0])
			}
			defer f.Close() //nolint:errcheck
			in = f
		}

		return runScore(in, cmd.OutOrStdout(), scoreFormat)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "text", "output format: text or json")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(in io.Reader, out io.Writer, format string) error {
	if format != "text" && format != "json" {
		return eris.Errorf("score: unsupported format %q", format)
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return eris.Wrap(err, "score: read input")
	}
	answers, err := decodeAnswers(data)
	if err != nil {
		return err
	}

	res := scorer.Compute(answers)

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(res), "score: encode result")
	}

	_, err = fmt.Fprintln(out, res.PortfolioSummary)
	if err != nil {
		return eris.Wrap(err, "score: write output")
	}
	return nil
}

// decodeAnswers accepts a bare answers object or one wrapped in "answers".
func decodeAnswers(data []byte) (model.AnswerSet, error) {
	var wrapper struct {
		Answers json.RawMessage `json:"answers"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && len(wrapper.Answers) > 0 {
		data = wrapper.Answers
	}
	answers, err := model.ParseAnswers(data)
	if err != nil {
		return model.AnswerSet{}, eris.Wrap(err, "score: decode answers")
	}
	return answers, nil
}
