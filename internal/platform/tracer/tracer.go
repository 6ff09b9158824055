// Package tracer is a small tracing abstraction over OpenTelemetry so engine
// services can emit spans without importing otel APIs directly.
//
// Implementations:
//   - NoopTracer: tests and deployments without tracing
//   - OTelTracer: OpenTelemetry adapter
package tracer

import (
	"context"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span, marking it failed when err is non-nil.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a span; pass the returned context to child operations.
	//
	//   ctx, span := t.Start(ctx, tracer.SpanResolveVerification,
	//       tracer.String(tracer.AttrRequestID, requestID.String()),
	//   )
	//   defer func() { span.End(err) }()
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names emitted by the engine.
const (
	SpanRequestVerification = "verification.request"
	SpanResolveVerification = "verification.resolve"
	SpanExpirePending       = "verification.expire_pending"
	SpanGenerateProof       = "zkproof.generate"
)

// Attribute keys. Payloads never appear in spans, only identifiers and outcomes.
const (
	AttrCredentialID = "credential.id"
	AttrRequestID    = "verification.request_id"
	AttrProofID      = "zkproof.id"
	AttrProofType    = "zkproof.type"
	AttrVerified     = "verification.verified"
	AttrExpired      = "verification.expired_count"
)
