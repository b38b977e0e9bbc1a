package classifier

import (
	"context"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	infralogger "github.com/visiona/review-classifier/infrastructure/logger"
	"github.com/visiona/review-classifier/internal/domain"
	"github.com/visiona/review-classifier/internal/llm"
	"github.com/visiona/review-classifier/internal/telemetry"
)

// DefaultTimeout bounds the remote call.
const DefaultTimeout = 5 * time.Second

// FailureMalformed marks remote text without a valid verdict prefix.
const FailureMalformed llm.FailureKind = "malformed"

// Source names the stage that produced the returned verdict.
type Source string

const (
	SourcePrefilter Source = "prefilter"
	SourceRemote    Source = "remote"
	SourceFallback  Source = "fallback"
)

// Outcome is a verdict plus how it was reached.
type Outcome struct {
	Verdict domain.Verdict
	Source  Source
	Rule    Rule
	// Failure and Err are set only when Source is SourceFallback.
	Failure llm.FailureKind
	Err     error
	// RemoteDuration is zero when no remote call was made.
	RemoteDuration time.Duration
}

// Config tunes the remote stage.
type Config struct {
	// Timeout bounds each remote call. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Classifier runs the pre-filter and, for reviews that pass it, asks the
// remote generator for a second opinion. It is safe for concurrent use.
type Classifier struct {
	prefilter *PreFilter
	generator llm.Generator
	timeout   time.Duration
	logger    infralogger.Logger
	telemetry *telemetry.Provider
}

// New creates a Classifier. A nil generator disables the remote stage; a nil
// telemetry provider disables metrics and tracing.
func New(gen llm.Generator, cfg Config, log infralogger.Logger, tp *telemetry.Provider) *Classifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = infralogger.NewNop()
	}
	return &Classifier{
		prefilter: NewPreFilter(),
		generator: gen,
		timeout:   cfg.Timeout,
		logger:    log,
		telemetry: tp,
	}
}

// Classify returns the verdict for in. It never fails.
func (c *Classifier) Classify(ctx context.Context, in domain.ReviewInput) domain.Verdict {
	return c.Evaluate(ctx, in).Verdict
}

// Evaluate classifies in and reports which stage decided.
func (c *Classifier) Evaluate(ctx context.Context, in domain.ReviewInput) Outcome {
	var span trace.Span
	if c.telemetry != nil {
		ctx, span = c.telemetry.StartSpan(ctx, "classifier.evaluate",
			attribute.Int("review.rating", in.Rating),
			attribute.Int("review.comment_length", utf8.RuneCountInString(in.Comment)),
		)
		defer span.End()
	}

	verdict, rule := c.prefilter.Evaluate(in)
	out := Outcome{Verdict: verdict, Source: SourcePrefilter, Rule: rule}

	if !verdict.IsSuspicious() && c.generator != nil {
		out = c.consultRemote(ctx, in, out)
	}

	if span != nil {
		span.SetAttributes(
			attribute.String("verdict.label", string(out.Verdict.Label)),
			attribute.String("verdict.source", string(out.Source)),
			attribute.String("prefilter.rule", string(out.Rule)),
		)
	}
	c.record(ctx, out)
	return out
}

// consultRemote makes the single remote call and resolves its result
// against the pre-filter outcome held in pre.
func (c *Classifier) consultRemote(ctx context.Context, in domain.ReviewInput, pre Outcome) Outcome {
	var span trace.Span
	if c.telemetry != nil {
		ctx, span = c.telemetry.StartSpan(ctx, "classifier.remote",
			attribute.String("llm.provider", c.generator.Name()),
		)
		defer span.End()
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	text, err := c.generator.Generate(callCtx, BuildPrompt(in))
	elapsed := time.Since(start)

	out := pre
	out.RemoteDuration = elapsed

	switch {
	case err != nil:
		kind := llm.KindOf(err)
		if kind == "" {
			kind = llm.FailureNetwork
		}
		out.Source, out.Failure, out.Err = SourceFallback, kind, err
	default:
		parsed, parseErr := domain.ParseVerdict(text)
		if parseErr != nil {
			out.Source, out.Failure, out.Err = SourceFallback, FailureMalformed, parseErr
			break
		}
		out.Verdict, out.Source = parsed, SourceRemote
	}

	if out.Source == SourceFallback {
		infralogger.FromContextOr(ctx, c.logger).Warn("remote classifier unavailable, using pre-filter verdict",
			infralogger.String("provider", c.generator.Name()),
			infralogger.String("failure_kind", string(out.Failure)),
			infralogger.Duration("elapsed", elapsed),
			infralogger.Error(out.Err),
		)
	}
	if span != nil {
		span.SetAttributes(attribute.String("llm.failure_kind", string(out.Failure)))
		if out.Err != nil {
			span.RecordError(out.Err)
		}
	}
	if c.telemetry != nil {
		c.telemetry.RecordRemoteCall(ctx, elapsed, string(out.Failure))
	}
	return out
}

func (c *Classifier) record(ctx context.Context, out Outcome) {
	infralogger.FromContextOr(ctx, c.logger).Debug("review classified",
		infralogger.String("label", string(out.Verdict.Label)),
		infralogger.String("source", string(out.Source)),
		infralogger.String("rule", string(out.Rule)),
	)
	if c.telemetry == nil {
		return
	}
	c.telemetry.RecordPrefilterRule(ctx, string(out.Rule))
	c.telemetry.RecordVerdict(ctx, string(out.Verdict.Label), string(out.Source))
}
