package search

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"MediaSearchBot/internal/auth"
	"MediaSearchBot/internal/models"
	"MediaSearchBot/internal/query"
	"MediaSearchBot/internal/ratelimit"
)

// UsageRecorder receives the fire-and-forget usage counter increments.
type UsageRecorder interface {
	RecordUsage(identity int64)
}

// Orchestrator is the single entry point for an inline search request:
// authorization, then rate limiting, then parsing, then execution.
type Orchestrator struct {
	gate    *auth.Gate
	limiter *ratelimit.Limiter
	parser  *query.Parser
	engine  *Engine
	usage   UsageRecorder
	log     *zap.Logger
}

// NewOrchestrator wires the request path.
func NewOrchestrator(gate *auth.Gate, limiter *ratelimit.Limiter, parser *query.Parser, engine *Engine, usage UsageRecorder, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		gate:    gate,
		limiter: limiter,
		parser:  parser,
		engine:  engine,
		usage:   usage,
		log:     log,
	}
}

// Handle serves one inbound search request. Denials and throttles are
// terminal and returned before any other work; parse failures become a
// guidance response; storage faults degrade to a generic error response.
// The usage counter is incremented off the response path and never for a
// cancelled request.
func (o *Orchestrator) Handle(ctx context.Context, raw string, requester int64, offset int) models.Response {
	if d := o.gate.Check(ctx, requester); !d.Allowed {
		return models.Response{
			Kind:        models.ResponseDenied,
			DenyReason:  d.Reason,
			JoinChannel: d.JoinChannel,
		}
	}

	if !o.limiter.Allow(requester) {
		return models.Response{
			Kind:       models.ResponseThrottled,
			RetryAfter: o.limiter.RetryAfter(requester),
		}
	}

	req, err := o.parser.Parse(raw)
	if err != nil {
		return models.Response{Kind: models.ResponseEmptyGuidance}
	}
	req.Requester = requester
	req.Offset = offset

	page, err := o.engine.Execute(ctx, req)
	if err != nil {
		if errors.Is(err, models.ErrMalformed) {
			return models.Response{Kind: models.ResponseEmptyGuidance}
		}
		if ctx.Err() != nil {
			return models.Response{Kind: models.ResponseError, ErrKind: models.ErrorCancelled}
		}
		o.log.Error("search failed",
			zap.Int64("user_id", requester),
			zap.String("query", raw),
			zap.Error(err))
		return models.Response{Kind: models.ResponseError, ErrKind: classifyError(err)}
	}

	if ctx.Err() != nil {
		// abandoned request: no page, no counter increment
		return models.Response{Kind: models.ResponseError, ErrKind: models.ErrorCancelled}
	}
	go o.usage.RecordUsage(requester)

	return models.Response{Kind: models.ResponsePage, Page: page}
}

// classifyError maps an execution failure onto the error arm of the
// response union.
func classifyError(err error) models.ErrorKind {
	if _, ok := models.AsStorageError(err); ok {
		return models.ErrorStorage
	}
	return models.ErrorInternal
}
