// Package pipeline orchestrates the query path: rate gate, validation,
// authorization, cache lookup, execution, cache store, audit. Each request
// walks a fixed state machine and every terminal state produces the same
// response envelope, so callers handle one shape regardless of outcome.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"querygateapi/models"
	"querygateapi/pkg/logger"
	"querygateapi/pkg/qerror"
	"querygateapi/services/access"
	"querygateapi/services/cache"
	"querygateapi/services/dto"
	"querygateapi/services/executor"
	"querygateapi/services/validation"
)

// State names one position in the request lifecycle.
type State string

// Lifecycle states. Rejected covers everything refused before execution;
// Failed covers execution and infrastructure errors.
const (
	StateReceived     State = "received"
	StateValidated    State = "validated"
	StateAuthorized   State = "authorized"
	StateCacheChecked State = "cache_checked"
	StateCacheHit     State = "cache_hit"
	StateExecuting    State = "executing"
	StateCompleted    State = "completed"
	StateRejected     State = "rejected"
	StateFailed       State = "failed"
)

// Recorder persists one audit entry per terminal state. Implementations must
// tolerate being called from short-lived goroutines.
type Recorder interface {
	Record(entry *models.QueryHistory) error
}

// Options wires the pipeline stages together.
type Options struct {
	Validator  *validation.Validator
	Engine     *access.Engine
	Executor   *executor.Executor
	Cache      *cache.Manager
	Recorder   Recorder
	RateLimit  int64
	RateWindow time.Duration
}

// Pipeline executes the five-stage query path.
type Pipeline struct {
	validator  *validation.Validator
	engine     *access.Engine
	executor   *executor.Executor
	cache      *cache.Manager
	recorder   Recorder
	rateLimit  int64
	rateWindow time.Duration
}

// New creates a Pipeline from its stages.
func New(opts Options) *Pipeline {
	return &Pipeline{
		validator:  opts.Validator,
		engine:     opts.Engine,
		executor:   opts.Executor,
		cache:      opts.Cache,
		recorder:   opts.Recorder,
		rateLimit:  opts.RateLimit,
		rateWindow: opts.RateWindow,
	}
}

// cachedResult is the query-tier cache payload: the execution artifacts
// only. Validation output is recomputed per request, so it is not stored.
type cachedResult struct {
	Columns   []string        `json:"columns"`
	Rows      [][]interface{} `json:"rows"`
	RowCount  int             `json:"row_count"`
	Truncated bool            `json:"truncated"`
}

// run tracks one request through the state machine.
type run struct {
	id      string
	state   State
	started time.Time
}

func (r *run) advance(next State) {
	logger.Debugf("query %s: %s -> %s", r.id, r.state, next)
	r.state = next
}

// Run takes a raw query request to a terminal state and always returns an
// envelope. The context carries the caller's overall deadline.
func (p *Pipeline) Run(ctx context.Context, req *dto.QueryRequest) *dto.QueryResponse {
	r := &run{id: uuid.NewString()[:8], state: StateReceived, started: time.Now()}

	if resp := p.rateGate(ctx, r, req); resp != nil {
		return resp
	}

	normalized, report, err := p.validator.Validate(req.SQL)
	if err != nil {
		r.advance(StateRejected)
		p.audit(req, req.SQL, r, 0, false, err)
		return p.failure(r, err)
	}
	r.advance(StateValidated)

	decision, err := p.engine.Authorize(ctx, req.UserID, normalized)
	if err != nil {
		if qerror.KindOf(err) == qerror.PermissionDenied {
			r.advance(StateRejected)
		} else {
			r.advance(StateFailed)
		}
		p.audit(req, normalized, r, 0, false, err)
		return p.failure(r, err)
	}
	r.advance(StateAuthorized)

	key := p.cache.QueryKey(req.UserID, decision.SQL, req.Params)
	lookup := time.Now()
	var hit cachedResult
	if p.cache.GetJSON(ctx, key, &hit) {
		r.advance(StateCacheHit)
		r.advance(StateCompleted)
		resp := p.success(&hit, report, decision.SQL, true, time.Since(lookup))
		p.audit(req, normalized, r, hit.RowCount, true, nil)
		return resp
	}
	r.advance(StateCacheChecked)

	// The caller's deadline may already be spent on upstream stages.
	if ctx.Err() != nil {
		r.advance(StateFailed)
		err := qerror.New(qerror.Timeout, "request deadline exceeded")
		p.audit(req, normalized, r, 0, false, err)
		return p.failure(r, err)
	}

	r.advance(StateExecuting)
	res, err := p.executor.Execute(ctx, decision.SQL, req.Params, req.RowLimit)
	if err != nil {
		r.advance(StateFailed)
		p.audit(req, normalized, r, 0, false, err)
		return p.failure(r, err)
	}
	r.advance(StateCompleted)

	payload := cachedResult{
		Columns:   res.Columns,
		Rows:      res.Rows,
		RowCount:  res.RowCount,
		Truncated: res.Truncated,
	}
	p.cache.SetJSON(ctx, key, payload)

	resp := p.success(&payload, report, decision.SQL, false, res.ExecutionTime)
	p.audit(req, normalized, r, res.RowCount, false, nil)
	return resp
}

// Explain authorizes the statement exactly like Run, then asks the database
// for its JSON plan instead of executing. Plans show the statement as it
// would really run, rewrites included, and are never cached.
func (p *Pipeline) Explain(ctx context.Context, req *dto.QueryRequest) *dto.ExplainResponse {
	r := &run{id: uuid.NewString()[:8], state: StateReceived, started: time.Now()}

	if resp := p.rateGate(ctx, r, req); resp != nil {
		return &dto.ExplainResponse{Status: resp.Status, Error: resp.Error}
	}

	normalized, _, err := p.validator.Validate(req.SQL)
	if err != nil {
		r.advance(StateRejected)
		return &dto.ExplainResponse{Status: dto.StatusFor(qerror.KindOf(err)), Error: dto.ErrorRecordFor(err)}
	}
	r.advance(StateValidated)

	decision, err := p.engine.Authorize(ctx, req.UserID, normalized)
	if err != nil {
		if qerror.KindOf(err) == qerror.PermissionDenied {
			r.advance(StateRejected)
		} else {
			r.advance(StateFailed)
		}
		return &dto.ExplainResponse{Status: dto.StatusFor(qerror.KindOf(err)), Error: dto.ErrorRecordFor(err)}
	}
	r.advance(StateAuthorized)

	r.advance(StateExecuting)
	res, err := p.executor.Execute(ctx, "EXPLAIN FORMAT=JSON "+decision.SQL, req.Params, 1)
	if err != nil {
		r.advance(StateFailed)
		return &dto.ExplainResponse{Status: dto.StatusFor(qerror.KindOf(err)), Error: dto.ErrorRecordFor(err)}
	}
	r.advance(StateCompleted)

	return &dto.ExplainResponse{
		Status:    dto.StatusSuccess,
		Plan:      decodePlan(res),
		Rewritten: decision.Rewritten,
	}
}

// rateGate charges the request against the user's window. A dead counter
// store fails open: queries keep flowing and the outage is logged.
func (p *Pipeline) rateGate(ctx context.Context, r *run, req *dto.QueryRequest) *dto.QueryResponse {
	if p.rateLimit <= 0 {
		return nil
	}
	n, remaining, err := p.cache.RateHit(ctx, req.UserID, p.rateWindow)
	if err != nil {
		logger.Warnf("rate counter unavailable, allowing query %s: %v", r.id, err)
		return nil
	}
	if n <= p.rateLimit {
		return nil
	}
	qe := qerror.Newf(qerror.RateLimit, "rate limit exceeded: %d queries per %s", p.rateLimit, p.rateWindow)
	qe.RetryAfter = remaining
	r.advance(StateRejected)
	return p.failure(r, qe)
}

func (p *Pipeline) success(res *cachedResult, report validation.Report, sqlText string, cached bool, elapsed time.Duration) *dto.QueryResponse {
	resp := &dto.QueryResponse{
		Status:          dto.StatusSuccess,
		Columns:         res.Columns,
		Rows:            res.Rows,
		RowCount:        res.RowCount,
		Truncated:       res.Truncated,
		Cached:          cached,
		ExecutionTimeMs: elapsed.Milliseconds(),
		SQL:             sqlText,
		Complexity:      report.Rating,
		Warnings:        report.Warnings,
	}
	if res.Truncated {
		resp.Warnings = append(resp.Warnings, "result truncated; narrow the query or lower row_limit")
	}
	return resp
}

func (p *Pipeline) failure(r *run, err error) *dto.QueryResponse {
	return &dto.QueryResponse{
		Status:          dto.StatusFor(qerror.KindOf(err)),
		Cached:          false,
		ExecutionTimeMs: time.Since(r.started).Milliseconds(),
		Error:           dto.ErrorRecordFor(err),
	}
}

// audit writes the history row without blocking the response.
func (p *Pipeline) audit(req *dto.QueryRequest, sqlText string, r *run, rowCount int, cached bool, cause error) {
	if p.recorder == nil {
		return
	}
	entry := &models.QueryHistory{
		UserID:          req.UserID,
		Question:        req.Question,
		SQL:             sqlText,
		Status:          dto.StatusSuccess,
		RowCount:        rowCount,
		ExecutionTimeMs: time.Since(r.started).Milliseconds(),
		Cached:          cached,
	}
	if cause != nil {
		entry.Status = dto.StatusFor(qerror.KindOf(cause))
		entry.ErrorMessage = dto.ErrorRecordFor(cause).Message
	}
	go func() {
		if err := p.recorder.Record(entry); err != nil {
			logger.Warnf("history write failed: %v", err)
		}
	}()
}

// decodePlan unwraps the single plan cell EXPLAIN FORMAT=JSON returns.
func decodePlan(res *executor.Result) interface{} {
	if len(res.Rows) == 0 || len(res.Rows[0]) == 0 {
		return nil
	}
	text, ok := res.Rows[0][0].(string)
	if !ok {
		return res.Rows[0][0]
	}
	var plan json.RawMessage
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		return text
	}
	return plan
}
