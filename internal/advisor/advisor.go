// Package advisor is the conversational front-end. It walks a client through
// the suitability questionnaire with a remote language model and scores the
// collected answers in-process through the calculate_profile tool.
package advisor

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/mifid-advisor/internal/audit"
	"github.com/sells-group/mifid-advisor/internal/model"
	"github.com/sells-group/mifid-advisor/internal/resilience"
	"github.com/sells-group/mifid-advisor/internal/session"
	"github.com/sells-group/mifid-advisor/pkg/anthropic"
)

// ErrEmptyMessage is returned by Chat for a blank message.
var ErrEmptyMessage = eris.New("advisor: no message provided")

const (
	maxToolRounds   = 3
	promptCacheTTL  = "5m"
	fallbackReply   = "Sorry, I had a problem processing your profile."
	remoteErrPrefix = "Error connecting to AI model: "
)

// Options configures an Advisor.
type Options struct {
	Model         string
	MaxTokens     int64
	HistoryWindow int
}

// Reply is the outcome of one chat turn.
type Reply struct {
	Reply     string        `json:"reply"`
	SessionID string        `json:"session_id"`
	Result    *model.Result `json:"-"`
}

// Advisor drives conversations against the remote model.
type Advisor struct {
	client   anthropic.Client
	guard    *resilience.Guard
	sink     audit.Sink
	sessions *session.Store
	opts     Options
	system   []anthropic.SystemBlock
	tools    []anthropic.Tool
}

// New creates an Advisor. guard and sink may be nil.
func New(client anthropic.Client, guard *resilience.Guard, sink audit.Sink, sessions *session.Store, opts Options) *Advisor {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 20
	}
	return &Advisor{
		client:   client,
		guard:    guard,
		sink:     sink,
		sessions: sessions,
		opts:     opts,
		system:   anthropic.BuildCachedSystemBlocks(SystemPrompt(), promptCacheTTL),
		tools:    []anthropic.Tool{CalculateProfileTool()},
	}
}

// Model returns the configured model id.
func (a *Advisor) Model() string { return a.opts.Model }

// Chat runs one user turn: it replays the recent history, lets the model
// call calculate_profile as needed and returns the final reply. Remote
// failures become a reply rather than an error; the only error is
// ErrEmptyMessage.
func (a *Advisor) Chat(ctx context.Context, sessionID, message string) (Reply, error) {
	if strings.TrimSpace(message) == "" {
		return Reply{}, ErrEmptyMessage
	}

	unlock := a.sessions.Lock(sessionID)
	defer unlock()

	msgs := toMessages(a.sessions.Recent(sessionID, a.opts.HistoryWindow))
	msgs = appendMessage(msgs, "user", anthropic.ContentBlock{Type: anthropic.BlockText, Text: message})

	turns := []session.Turn{{Source: session.SourceUser, Transcript: message}}
	var result *model.Result
	var reply string

	for round := 0; ; round++ {
		resp, err := a.createMessage(ctx, sessionID, msgs)
		if err != nil {
			zap.L().Error("advisor: chat failed", zap.String("session_id", sessionID), zap.Error(err))
			reply = remoteErrPrefix + eris.Cause(err).Error()
			break
		}

		text := resp.Text()
		calls := resp.ToolCalls()
		if len(calls) == 0 || round >= maxToolRounds {
			reply = text
			break
		}

		assistant := session.Turn{Source: session.SourceAssistant, Transcript: text}
		for _, c := range calls {
			assistant.ToolCalls = append(assistant.ToolCalls, session.ToolCall{ID: c.ID, Name: c.Name, Input: c.Input})
		}
		turns = append(turns, assistant)
		msgs = append(msgs, anthropic.Message{Role: "assistant", Blocks: resp.Content})

		results := make([]anthropic.ContentBlock, 0, len(calls))
		for _, c := range calls {
			out := ExecuteTool(ctx, a.sink, sessionID, c.Name, c.Input)
			if out.Result != nil {
				result = out.Result
			}
			a.auditToolCall(ctx, sessionID, c, out)
			turns = append(turns, session.Turn{
				Source:     session.SourceTool,
				Transcript: out.Content,
				ToolCallID: c.ID,
				IsError:    out.IsError,
			})
			results = append(results, anthropic.ContentBlock{
				Type:      anthropic.BlockToolResult,
				ToolUseID: c.ID,
				Text:      out.Content,
				IsError:   out.IsError,
			})
		}
		msgs = appendMessage(msgs, "user", results...)
	}

	reply = withNarrative(reply, result)
	turns = append(turns, session.Turn{Source: session.SourceAssistant, Transcript: reply})
	a.sessions.Append(sessionID, turns...)
	a.auditChat(ctx, sessionID, message, reply)

	return Reply{Reply: reply, SessionID: sessionID, Result: result}, nil
}

// createMessage sends one request through the guard and audits it.
func (a *Advisor) createMessage(ctx context.Context, sessionID string, msgs []anthropic.Message) (*anthropic.MessageResponse, error) {
	req := anthropic.MessageRequest{
		Model:     a.opts.Model,
		MaxTokens: a.opts.MaxTokens,
		System:    a.system,
		Messages:  msgs,
		Tools:     a.tools,
	}

	resp, err := resilience.Call(ctx, a.guard, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		resp, err := a.client.CreateMessage(ctx, req)
		if err != nil {
			if status := anthropic.APIStatus(err); resilience.IsTransientHTTPStatus(status) {
				return nil, resilience.NewTransientError(err, status)
			}
			return nil, err
		}
		return resp, nil
	})

	rec := audit.New(audit.TypeLLMCall, sessionID)
	rec.Model = a.opts.Model
	if err != nil {
		rec.Status = audit.StatusError
		rec.Error = err.Error()
		a.append(ctx, rec)
		return nil, eris.Wrap(err, "advisor: create message")
	}

	resp.Usage.LogCost(a.opts.Model, "chat")
	rec.Status = audit.StatusSuccess
	a.append(ctx, rec.WithPayload(map[string]any{
		"stop_reason":   resp.StopReason,
		"input_tokens":  resp.Usage.InputTokens,
		"output_tokens": resp.Usage.OutputTokens,
		"tool_calls":    len(resp.ToolCalls()),
	}))
	return resp, nil
}

func (a *Advisor) auditToolCall(ctx context.Context, sessionID string, c anthropic.ContentBlock, out ToolOutcome) {
	rec := audit.New(audit.TypeToolCall, sessionID)
	rec.Model = a.opts.Model
	rec.Status = audit.StatusSuccess
	if out.IsError {
		rec.Status = audit.StatusError
		rec.Error = out.Content
	}
	if out.Result != nil {
		rec.Profile = out.Result.Profile
		rec.Score = out.Result.TotalScore
	}
	a.append(ctx, rec.WithPayload(map[string]any{
		"tool":      c.Name,
		"tool_args": c.Input,
		"model":     a.opts.Model,
	}))
}

func (a *Advisor) auditChat(ctx context.Context, sessionID, message, reply string) {
	rec := audit.New(audit.TypeTextChat, sessionID)
	rec.Model = a.opts.Model
	rec.Status = audit.StatusSuccess
	if strings.HasPrefix(reply, remoteErrPrefix) {
		rec.Status = audit.StatusError
	}
	a.append(ctx, rec.WithPayload(map[string]any{
		"user_message": truncate(message, 200),
		"response":     truncate(reply, 300),
		"model":        a.opts.Model,
	}))
}

func (a *Advisor) append(ctx context.Context, r audit.Record) {
	if a.sink == nil {
		return
	}
	if err := a.sink.Append(ctx, r); err != nil {
		zap.L().Error("advisor: audit append", zap.String("type", string(r.Type)), zap.Error(err))
	}
}

// withNarrative guarantees the portfolio summary reaches the client verbatim.
func withNarrative(reply string, res *model.Result) string {
	if res == nil {
		if strings.TrimSpace(reply) == "" {
			return fallbackReply
		}
		return reply
	}
	if strings.Contains(reply, res.PortfolioSummary) {
		return reply
	}
	if strings.TrimSpace(reply) == "" {
		return res.PortfolioSummary
	}
	return reply + "\n\n" + res.PortfolioSummary
}

// toMessages converts stored turns to API messages. Consecutive turns that
// map to the same role (tool results followed by a user message) are merged.
func toMessages(turns []session.Turn) []anthropic.Message {
	var msgs []anthropic.Message
	for _, t := range turns {
		switch t.Source {
		case session.SourceUser:
			msgs = appendMessage(msgs, "user", anthropic.ContentBlock{Type: anthropic.BlockText, Text: t.Transcript})
		case session.SourceAssistant:
			var blocks []anthropic.ContentBlock
			if t.Transcript != "" {
				blocks = append(blocks, anthropic.ContentBlock{Type: anthropic.BlockText, Text: t.Transcript})
			}
			for _, c := range t.ToolCalls {
				blocks = append(blocks, anthropic.ContentBlock{Type: anthropic.BlockToolUse, ID: c.ID, Name: c.Name, Input: c.Input})
			}
			if len(blocks) == 0 {
				continue
			}
			msgs = appendMessage(msgs, "assistant", blocks...)
		case session.SourceTool:
			msgs = appendMessage(msgs, "user", anthropic.ContentBlock{
				Type:      anthropic.BlockToolResult,
				ToolUseID: t.ToolCallID,
				Text:      t.Transcript,
				IsError:   t.IsError,
			})
		}
	}
	return msgs
}

func appendMessage(msgs []anthropic.Message, role string, blocks ...anthropic.ContentBlock) []anthropic.Message {
	if n := len(msgs); n > 0 && msgs[n-1].Role == role {
		msgs[n-1].Blocks = append(msgs[n-1].Blocks, blocks...)
		return msgs
	}
	return append(msgs, anthropic.Message{Role: role, Blocks: blocks})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
