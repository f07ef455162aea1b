package llm

import (
	"context"
	"time"

	"learno_backend/pkg/logger"
	"learno_backend/pkg/monitoring"
	"learno_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ObservedProvider records every call as a span, a prometheus sample and a log line.
type ObservedProvider struct {
	inner Provider
}

func WithObservability(p Provider) Provider {
	return &ObservedProvider{inner: p}
}

func (o *ObservedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)
	ctx, span := tracing.StartSpan(ctx, "llm.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.purpose", purpose),
		attribute.String("llm.model", o.inner.ModelID()),
	)

	start := time.Now()
	resp, err := o.inner.Generate(ctx, req)
	monitoring.ObserveGeneration(purpose, start, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Log.Warn("AI generation failed",
			zap.String("purpose", purpose),
			zap.String("model", o.inner.ModelID()),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("llm.input_tokens", resp.Usage.InputTokens),
		attribute.Int("llm.output_tokens", resp.Usage.OutputTokens),
	)
	logger.Log.Debug("AI generation finished",
		zap.String("purpose", purpose),
		zap.String("model", resp.Model),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("latency", time.Since(start)))
	return resp, nil
}

func (o *ObservedProvider) ModelID() string {
	return o.inner.ModelID()
}
