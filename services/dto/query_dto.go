package dto

import "querygateapi/pkg/qerror"

// Envelope statuses. Every pipeline outcome maps to exactly one.
const (
	StatusSuccess          = "success"
	StatusValidationError  = "validation_error"
	StatusPermissionDenied = "permission_denied"
	StatusRateLimit        = "rate_limit"
	StatusTimeout          = "timeout"
	StatusFailed           = "failed"
)

// QueryRequest is the body of POST /api/query. The SQL is typically produced
// by an upstream generator, which is why the original question and the
// generator's confidence ride along for auditing.
type QueryRequest struct {
	UserID     uint          `json:"user_id" validate:"required"`
	SQL        string        `json:"sql" validate:"required"`
	Question   string        `json:"question,omitempty"`
	Confidence float64       `json:"confidence,omitempty"`
	Params     []interface{} `json:"params,omitempty"`
	RowLimit   int           `json:"row_limit,omitempty" validate:"omitempty,min=1"`
}

// ErrorRecord is the error block of a failed envelope.
type ErrorRecord struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Retriable  bool   `json:"retriable"`
	RetryAfter int    `json:"retry_after_seconds,omitempty"`
}

// QueryResponse is the envelope returned for every query, successful or not.
// SQL is the statement as it was executed, row filters included; failed
// requests omit it.
type QueryResponse struct {
	Status          string          `json:"status"`
	Columns         []string        `json:"columns,omitempty"`
	Rows            [][]interface{} `json:"rows,omitempty"`
	RowCount        int             `json:"row_count"`
	Truncated       bool            `json:"truncated,omitempty"`
	Cached          bool            `json:"cached"`
	ExecutionTimeMs int64           `json:"execution_time_ms"`
	SQL             string          `json:"sql,omitempty"`
	Complexity      string          `json:"complexity,omitempty"`
	Warnings        []string        `json:"warnings,omitempty"`
	Error           *ErrorRecord    `json:"error,omitempty"`
}

// ExplainResponse is the envelope of POST /api/query/explain. The plan is
// the database's JSON-format plan for the statement as it would actually
// run, row filters included.
type ExplainResponse struct {
	Status    string       `json:"status"`
	Plan      interface{}  `json:"plan,omitempty"`
	Rewritten bool         `json:"rewritten"`
	Error     *ErrorRecord `json:"error,omitempty"`
}

// StatusFor maps an error kind to its envelope status. Database and server
// failures share the failed status; the error block keeps the precise kind.
func StatusFor(kind qerror.Kind) string {
	switch kind {
	case qerror.ValidationError:
		return StatusValidationError
	case qerror.PermissionDenied:
		return StatusPermissionDenied
	case qerror.RateLimit:
		return StatusRateLimit
	case qerror.Timeout:
		return StatusTimeout
	default:
		return StatusFailed
	}
}

// ErrorRecordFor builds the envelope error block from a pipeline error.
// Validation and SQL failures keep their underlying detail because the
// caller can act on it; server-side failures stay generic.
func ErrorRecordFor(err error) *ErrorRecord {
	qe := qerror.AsError(err)
	rec := &ErrorRecord{
		Kind:      string(qe.Kind),
		Message:   qe.Message,
		Retriable: qe.Retriable,
	}
	switch qe.Kind {
	case qerror.ValidationError, qerror.SQLError:
		if qe.Err != nil {
			rec.Message = qe.Message + ": " + qe.Err.Error()
		}
	case qerror.ServerError:
		rec.Message = "internal server error"
	}
	if qe.RetryAfter > 0 {
		rec.RetryAfter = int(qe.RetryAfter.Seconds())
	}
	return rec
}
