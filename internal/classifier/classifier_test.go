package classifier_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"

	"github.com/visiona/review-classifier/infrastructure/logger"
	"github.com/visiona/review-classifier/internal/classifier"
	"github.com/visiona/review-classifier/internal/domain"
	"github.com/visiona/review-classifier/internal/llm"
	"github.com/visiona/review-classifier/internal/telemetry"
)

const kitchenReview = "The kitchen layout the architect proposed matched our needs perfectly and the timeline was respected."

// fakeGenerator returns a fixed answer and records how it was called.
type fakeGenerator struct {
	text    string
	err     error
	block   bool
	calls   atomic.Int32
	prompts []string
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	f.prompts = append(f.prompts, prompt)
	if f.block {
		<-ctx.Done()
		return "", &llm.CallError{Provider: "fake", Kind: llm.FailureTimeout, Err: ctx.Err()}
	}
	return f.text, f.err
}

// recordingTracer keeps the name and attributes of every span it starts.
type recordingTracer struct {
	embedded.Tracer

	mu    sync.Mutex
	spans map[string]map[attribute.Key]attribute.Value
}

type recordingSpan struct {
	trace.Span

	tracer *recordingTracer
	name   string
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	r.mu.Lock()
	if r.spans == nil {
		r.spans = make(map[string]map[attribute.Key]attribute.Value)
	}
	r.spans[name] = make(map[attribute.Key]attribute.Value)
	r.mu.Unlock()

	span := &recordingSpan{Span: trace.SpanFromContext(ctx), tracer: r, name: name}
	span.SetAttributes(trace.NewSpanStartConfig(opts...).Attributes()...)
	return trace.ContextWithSpan(ctx, span), span
}

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	for _, a := range kv {
		s.tracer.spans[s.name][a.Key] = a.Value
	}
}

func (r *recordingTracer) attr(span string, key attribute.Key) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attrs, ok := r.spans[span]
	if !ok {
		return "", false
	}
	v, ok := attrs[key]
	return v.Emit(), ok
}

func newClassifier(gen llm.Generator) *classifier.Classifier {
	return classifier.New(gen, classifier.Config{}, logger.NewNop(), nil)
}

func TestClassify_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     domain.ReviewInput
		gen       *fakeGenerator
		want      string
		wantCalls int32
	}{
		{
			name:  "promotional short-circuits",
			input: domain.ReviewInput{Rating: 5, Comment: "Buy now at www.example.com for amazing deals!!!"},
			gen:   &fakeGenerator{text: "authentic: looks fine"},
			want:  "suspicious: contains promotional content or external links",
		},
		{
			name:  "short extreme short-circuits",
			input: domain.ReviewInput{Rating: 1, Comment: "bad"},
			gen:   &fakeGenerator{text: "authentic: looks fine"},
			want:  "suspicious: very short review with extreme rating",
		},
		{
			name:  "formatting abuse short-circuits",
			input: domain.ReviewInput{Rating: 3, Comment: "GREAT!!!! SOOO GOOD!!!! AMAZING!!!!"},
			gen:   &fakeGenerator{text: "authentic: looks fine"},
			want:  "suspicious: excessive punctuation or capitalization",
		},
		{
			name:      "remote failure falls back",
			input:     domain.ReviewInput{Rating: 4, Comment: kitchenReview},
			gen:       &fakeGenerator{err: &llm.CallError{Provider: "fake", Kind: llm.FailureNetwork, Err: errors.New("refused")}},
			want:      "authentic: review appears normal",
			wantCalls: 1,
		},
		{
			name:      "remote verdict used verbatim",
			input:     domain.ReviewInput{Rating: 3, Comment: "fine"},
			gen:       &fakeGenerator{text: "suspicious: lacks specific detail about the service"},
			want:      "suspicious: lacks specific detail about the service",
			wantCalls: 1,
		},
		{
			name:      "malformed remote answer falls back",
			input:     domain.ReviewInput{Rating: 3, Comment: "fine"},
			gen:       &fakeGenerator{text: "I think this is okay"},
			want:      "authentic: review appears normal",
			wantCalls: 1,
		},
		{
			name:      "remote answer is trimmed",
			input:     domain.ReviewInput{Rating: 3, Comment: "fine"},
			gen:       &fakeGenerator{text: "\n  authentic: short but plausible  \n"},
			want:      "authentic: short but plausible",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := newClassifier(tt.gen).Classify(context.Background(), tt.input)
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, tt.wantCalls, tt.gen.calls.Load())
		})
	}
}

func TestEvaluate_FallbackEqualsPreFilter(t *testing.T) {
	t.Parallel()

	failures := map[string]*fakeGenerator{
		"network":   {err: &llm.CallError{Kind: llm.FailureNetwork}},
		"status":    {err: &llm.CallError{Kind: llm.FailureStatus}},
		"decode":    {err: &llm.CallError{Kind: llm.FailureDecode}},
		"empty":     {err: &llm.CallError{Kind: llm.FailureEmpty}},
		"untyped":   {err: errors.New("boom")},
		"malformed": {text: "Verdict: authentic"},
		"blank":     {text: "   "},
	}
	inputs := []domain.ReviewInput{
		{Rating: 3, Comment: "fine"},
		{Rating: 4, Comment: kitchenReview},
		{Rating: 2, Comment: ""},
		{Rating: 0, Comment: "rating out of range but ordinary text"},
	}

	pf := classifier.NewPreFilter()
	for name, gen := range failures {
		c := newClassifier(gen)
		for _, in := range inputs {
			want, wantRule := pf.Evaluate(in)
			out := c.Evaluate(context.Background(), in)

			assert.Equal(t, want, out.Verdict, "%s: %+v", name, in)
			assert.Equal(t, want.String(), out.Verdict.String(), "%s: %+v", name, in)
			assert.Equal(t, wantRule, out.Rule)
			assert.Equal(t, classifier.SourceFallback, out.Source)
			assert.Error(t, out.Err)
		}
	}
}

func TestEvaluate_FailureKinds(t *testing.T) {
	t.Parallel()

	in := domain.ReviewInput{Rating: 3, Comment: "fine"}

	out := newClassifier(&fakeGenerator{text: "nope"}).Evaluate(context.Background(), in)
	assert.Equal(t, classifier.FailureMalformed, out.Failure)
	require.ErrorIs(t, out.Err, domain.ErrMalformedVerdict)

	out = newClassifier(&fakeGenerator{err: &llm.CallError{Kind: llm.FailureStatus}}).Evaluate(context.Background(), in)
	assert.Equal(t, llm.FailureStatus, out.Failure)

	out = newClassifier(&fakeGenerator{err: errors.New("untyped")}).Evaluate(context.Background(), in)
	assert.Equal(t, llm.FailureNetwork, out.Failure)

	out = newClassifier(&fakeGenerator{text: "authentic: ok"}).Evaluate(context.Background(), in)
	assert.Equal(t, classifier.SourceRemote, out.Source)
	assert.Empty(t, out.Failure)
	assert.NoError(t, out.Err)
}

func TestEvaluate_NoGenerator(t *testing.T) {
	t.Parallel()

	out := newClassifier(nil).Evaluate(context.Background(), domain.ReviewInput{Rating: 3, Comment: "fine"})
	assert.Equal(t, classifier.SourcePrefilter, out.Source)
	assert.Equal(t, "authentic: review appears normal", out.Verdict.String())
	assert.Zero(t, out.RemoteDuration)
}

func TestEvaluate_TimeoutBoundsCall(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{block: true}
	c := classifier.New(gen, classifier.Config{Timeout: 50 * time.Millisecond}, logger.NewNop(), nil)

	start := time.Now()
	out := c.Evaluate(context.Background(), domain.ReviewInput{Rating: 4, Comment: kitchenReview})

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, classifier.SourceFallback, out.Source)
	assert.Equal(t, llm.FailureTimeout, out.Failure)
	assert.Equal(t, "authentic: review appears normal", out.Verdict.String())
}

func TestEvaluate_PromptCarriesReview(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{text: "authentic: ok"}
	newClassifier(gen).Classify(context.Background(), domain.ReviewInput{Rating: 4, Comment: kitchenReview})

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Rating: 4 out of 5")
	assert.Contains(t, gen.prompts[0], kitchenReview)
}

func TestEvaluate_RecordsMetrics(t *testing.T) {
	t.Parallel()

	tp := telemetry.NewProvider()
	c := classifier.New(&fakeGenerator{text: "garbage"}, classifier.Config{}, logger.NewNop(), tp)
	ctx := context.Background()

	c.Classify(ctx, domain.ReviewInput{Rating: 3, Comment: "fine"})
	c.Classify(ctx, domain.ReviewInput{Rating: 1, Comment: "bad"})

	m := tp.Metrics
	assert.InDelta(t, 1, testutil.ToFloat64(m.Verdicts.WithLabelValues("authentic", "fallback")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Verdicts.WithLabelValues("suspicious", "prefilter")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RemoteFailures.WithLabelValues("malformed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.PrefilterRules.WithLabelValues("short_extreme_rating")), 0)
}

func TestEvaluate_RemoteSpan(t *testing.T) {
	t.Parallel()

	in := domain.ReviewInput{Rating: 3, Comment: "fine"}

	tracer := &recordingTracer{}
	tp := telemetry.NewProvider()
	tp.Tracer = tracer
	classifier.New(&fakeGenerator{text: "garbage"}, classifier.Config{}, logger.NewNop(), tp).
		Evaluate(context.Background(), in)

	provider, ok := tracer.attr("classifier.remote", "llm.provider")
	require.True(t, ok)
	assert.Equal(t, "fake", provider)
	kind, _ := tracer.attr("classifier.remote", "llm.failure_kind")
	assert.Equal(t, string(classifier.FailureMalformed), kind)
	source, _ := tracer.attr("classifier.evaluate", "verdict.source")
	assert.Equal(t, string(classifier.SourceFallback), source)

	// the pre-filter alone never opens a remote span
	quiet := &recordingTracer{}
	tp = telemetry.NewProvider()
	tp.Tracer = quiet
	classifier.New(&fakeGenerator{text: "authentic: ok"}, classifier.Config{}, logger.NewNop(), tp).
		Evaluate(context.Background(), domain.ReviewInput{Rating: 1, Comment: "bad"})

	_, ok = quiet.attr("classifier.remote", "llm.provider")
	assert.False(t, ok)
	_, ok = quiet.attr("classifier.evaluate", "verdict.source")
	assert.True(t, ok)
}

// TestClassify_OllamaEndToEnd runs the real ollama backend against a fake endpoint.
func TestClassify_OllamaEndToEnd(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if strings.Contains(r.URL.Path, "broken") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"response":"suspicious: generic praise with no project detail\n"}`))
	}))
	t.Cleanup(srv.Close)

	ok := newClassifier(llm.NewOllama(srv.URL+"/api/generate", "", srv.Client()))
	got := ok.Classify(context.Background(), domain.ReviewInput{Rating: 4, Comment: kitchenReview})
	assert.Equal(t, "suspicious: generic praise with no project detail", got.String())

	broken := newClassifier(llm.NewOllama(srv.URL+"/broken", "", srv.Client()))
	got = broken.Classify(context.Background(), domain.ReviewInput{Rating: 4, Comment: kitchenReview})
	assert.Equal(t, "authentic: review appears normal", got.String())

	// promotional text never reaches the endpoint
	ok.Classify(context.Background(), domain.ReviewInput{Rating: 4, Comment: "visit http://spam.example"})
	assert.Equal(t, int32(2), hits.Load())
}
