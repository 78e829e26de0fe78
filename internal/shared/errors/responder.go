package errors

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// Respond writes the problem with the problem+json content type. Instance defaults to the
// request path and the active trace id is attached when present.
func Respond(c *gin.Context, problem ProblemDetail) {
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	if spanCtx := oteltrace.SpanContextFromContext(c.Request.Context()); spanCtx.HasTraceID() {
		problem = problem.WithExtension("traceId", spanCtx.TraceID().String())
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// ErrorMapper maps domain/application errors to ProblemDetail.
type ErrorMapper func(err error) (ProblemDetail, bool)

// ChainedResponder resolves errors through a list of mappers. Errors no mapper recognises
// become a 500 whose detail is logged but not sent to the client.
type ChainedResponder struct {
	mappers []ErrorMapper
	logger  *slog.Logger
}

// NewChainedResponder creates a responder with custom error mappers.
func NewChainedResponder(mappers ...ErrorMapper) *ChainedResponder {
	return &ChainedResponder{mappers: mappers}
}

// WithLogger sets the logger used for server-side failures. slog.Default is used otherwise.
func (r *ChainedResponder) WithLogger(logger *slog.Logger) *ChainedResponder {
	r.logger = logger
	return r
}

// RespondError tries each mapper before falling back to an internal error.
func (r *ChainedResponder) RespondError(c *gin.Context, err error) {
	problem, ok := r.resolve(err)
	if problem.Status >= 500 {
		r.log().LogAttrs(c.Request.Context(), slog.LevelError, "request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", problem.Status),
			slog.Bool("mapped", ok),
			slog.String("error", err.Error()),
		)
	}
	Respond(c, problem)
}

func (r *ChainedResponder) resolve(err error) (ProblemDetail, bool) {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem, true
	}
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			return problem, true
		}
	}
	return ErrInternal, false
}

func (r *ChainedResponder) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}
