package scorer

import "github.com/sells-group/mifid-advisor/internal/model"

// ScoreBlock totals a block's questions for the given answers. Each raw index
// is clamped to the question's option range, and the detail row records the
// clamped index so the explanation shows what was actually scored.
func ScoreBlock(a model.AnswerSet, b Block) model.BlockScore {
	out := model.BlockScore{
		Block:   b.Slug,
		Name:    b.Name,
		Max:     b.Max(),
		Details: make([]model.DetailRow, 0, len(b.Questions)),
	}

	for _, q := range b.Questions {
		opt, idx := q.Option(a.Index(q.Key))
		out.Score += opt.Points
		out.Details = append(out.Details, model.DetailRow{
			Key:         q.Key,
			Question:    q.Label,
			Answer:      opt.Label,
			AnswerIndex: idx,
			Score:       opt.Points,
			MaxScore:    q.MaxPoints(),
		})
	}

	return out
}
