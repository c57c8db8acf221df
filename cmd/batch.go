package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/mifid-advisor/internal/advisor"
	"github.com/sells-group/mifid-advisor/internal/audit"
	"github.com/sells-group/mifid-advisor/internal/model"
)

var (
	batchOut         string
	batchConcurrency int
	batchAudit       bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <jsonl>",
	Short: "Score many answer sets from a JSONL file",
	Long: `Score one answer set per line of a JSONL file.

Each line is either a bare answers object or {"id": "...", "answers": {...}}.
Results are written as JSONL in input order; lines that cannot be decoded
produce an entry with an error instead of aborting the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		concurrency := cfg.Batch.Concurrency
		if batchConcurrency > 0 {
			cfg.Batch.Concurrency = batchConcurrency
			concurrency = batchConcurrency
		}
		mode := "score"
		if batchAudit {
			mode = "audit"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrapf(err, "batch: open %s", args[0])
		}
		defer f.Close() //nolint:errcheck

		items, err := readBatch(f)
		if err != nil {
			return err
		}

		var sink audit.Sink
		if batchAudit {
			log, err := audit.Open(ctx, cfg.Audit)
			if err != nil {
				return err
			}
			defer log.Close() //nolint:errcheck
			sink = log
		}

		results, err := processBatch(ctx, items, concurrency, sink)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if batchOut != "" {
			of, err := os.Create(batchOut)
			if err != nil {
				return eris.Wrapf(err, "batch: create %s", batchOut)
			}
			defer of.Close() //nolint:errcheck
			out = of
		}
		return writeBatch(out, results)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchOut, "out", "", "output JSONL file (default: stdout)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "concurrent scorers (default from config)")
	batchCmd.Flags().BoolVar(&batchAudit, "audit", false, "record each assessment in the audit log")
	rootCmd.AddCommand(batchCmd)
}

// batchItem is one input line.
type batchItem struct {
	Line    int
	ID      string
	Answers model.AnswerSet
	Err     error
}

// batchResult is one output line.
type batchResult struct {
	Line         int           `json:"line"`
	ID           string        `json:"id,omitempty"`
	Profile      string        `json:"profile,omitempty"`
	Score        string        `json:"score,omitempty"`
	Restrictions int           `json:"restrictions"`
	Result       *model.Result `json:"result,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// readBatch parses JSONL input. Blank lines are skipped; undecodable lines
// are kept with their error.
func readBatch(r io.Reader) ([]batchItem, error) {
	var items []batchItem
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 {
			continue
		}

		item := batchItem{Line: line}
		var wrapper struct {
			ID      string          `json:"id"`
			Answers json.RawMessage `json:"answers"`
		}
		if err := json.Unmarshal(data, &wrapper); err == nil && len(wrapper.Answers) > 0 {
			item.ID = wrapper.ID
			data = wrapper.Answers
		}
		answers, err := model.ParseAnswers(data)
		if err != nil {
			item.Err = err
		}
		item.Answers = answers
		items = append(items, item)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "batch: read input")
	}
	return items, nil
}

// processBatch scores items concurrently and returns results in input order.
func processBatch(ctx context.Context, items []batchItem, concurrency int, sink audit.Sink) ([]batchResult, error) {
	if len(items) == 0 {
		zap.L().Info("no answer sets found")
		return nil, nil
	}

	zap.L().Info("processing batch",
		zap.Int("items", len(items)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	results := make([]batchResult, len(items))
	var succeeded, failed atomic.Int64

	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			out := batchResult{Line: item.Line, ID: item.ID}
			if item.Err != nil {
				failed.Add(1)
				out.Error = item.Err.Error()
				zap.L().Warn("invalid answer set", zap.Int("line", item.Line), zap.Error(item.Err))
				results[i] = out
				return nil // don't abort batch on individual failure
			}

			sessionID := item.ID
			if sessionID == "" {
				sessionID = "batch"
			}
			res := advisor.Assess(gctx, sink, sessionID, item.Answers)
			out.Profile = res.Profile
			out.Score = res.Score
			out.Restrictions = len(res.Explanation.Restrictions)
			out.Result = &res
			results[i] = out
			succeeded.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return results, nil
}

func writeBatch(w io.Writer, results []batchResult) error {
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "batch: write result")
		}
	}
	return nil
}
