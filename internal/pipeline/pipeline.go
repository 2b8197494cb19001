// Package pipeline runs lead batches through validation, preprocessing and scoring.
package pipeline

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/intake"
	"github.com/sells-group/lead-cli/internal/model"
	"github.com/sells-group/lead-cli/internal/scorer"
)

// Batch outcomes reported to a Recorder.
const (
	OutcomeScored   = "scored"
	OutcomeRejected = "rejected"
)

// Recorder observes processed batches. Implementations must be safe for
// concurrent use.
type Recorder interface {
	RecordBatch(outcome string, scored *model.Batch)
}

// Pipeline orchestrates validate, preprocess and score for one batch at a
// time. It keeps no state between calls.
type Pipeline struct {
	scorer   *scorer.Scorer
	entries  *intake.EntryValidator
	now      func() time.Time
	loc      *time.Location
	recorder Recorder
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithClock sets the source of the reference instant.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithLocation sets the zone whose calendar days are used for dates.
func WithLocation(loc *time.Location) Option {
	return func(p *Pipeline) { p.loc = loc }
}

// WithRecorder attaches a batch observer.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithEntryValidator sets the manual entry validator.
func WithEntryValidator(ev *intake.EntryValidator) Option {
	return func(p *Pipeline) { p.entries = ev }
}

// New creates a Pipeline scoring with s. It defaults to the wall clock in
// the local zone and Indian phone numbering for manual entries.
func New(s *scorer.Scorer, opts ...Option) *Pipeline {
	p := &Pipeline{
		scorer: s,
		now:    time.Now,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.entries == nil {
		p.entries = intake.NewEntryValidator("IN")
	}
	return p
}

// Now returns the current reference instant in the pipeline's zone.
func (p *Pipeline) Now() time.Time {
	return p.now().In(p.loc)
}

// Scorer returns the scorer in use.
func (p *Pipeline) Scorer() *scorer.Scorer {
	return p.scorer
}

// Process validates b and, if it passes, returns a preprocessed and scored
// copy. A failed validation rejects the whole batch with a
// *intake.ValidationError and nothing is scored.
func (p *Pipeline) Process(b *model.Batch) (*model.Batch, error) {
	return p.run(b, p.Now())
}

// ProcessEntry validates a manual entry and scores it as a one-record batch.
// Form problems are returned as *intake.FormError.
func (p *Pipeline) ProcessEntry(e intake.Entry) (*model.Batch, error) {
	clean, err := p.entries.Validate(e)
	if err != nil {
		p.record(OutcomeRejected, nil)
		return nil, err
	}

	now := p.Now()
	b := clean.Batch()
	out := p.scorer.Score(intake.Preprocess(b, now), now)
	p.record(OutcomeScored, out)

	zap.L().Info("pipeline: scored manual entry",
		zap.String("name", clean.Name),
		zap.Int("score", *out.Leads[0].Score),
		zap.String("status", string(out.Leads[0].Status)),
	)
	return out, nil
}

func (p *Pipeline) run(b *model.Batch, now time.Time) (*model.Batch, error) {
	log := zap.L().With(zap.Int("leads", b.Len()))

	var res intake.Result
	phase(log, "validate", func() { res = intake.Validate(b) })
	if !res.Valid {
		log.Warn("pipeline: batch rejected",
			zap.String("kind", string(res.Kind)),
			zap.String("message", res.Message),
			zap.Int("invalid", res.Invalid),
		)
		p.record(OutcomeRejected, nil)
		return nil, res.Err()
	}

	var clean, scored *model.Batch
	phase(log, "preprocess", func() { clean = intake.Preprocess(b, now) })
	phase(log, "score", func() { scored = p.scorer.Score(clean, now) })
	if scored == nil {
		return nil, eris.New("pipeline: nothing to score")
	}

	p.record(OutcomeScored, scored)
	log.Info("pipeline: batch scored", zap.String("date", intake.FormatDate(now)))
	return scored, nil
}

func (p *Pipeline) record(outcome string, b *model.Batch) {
	if p.recorder != nil {
		p.recorder.RecordBatch(outcome, b)
	}
}

func phase(log *zap.Logger, name string, fn func()) {
	start := time.Now()
	fn()
	log.Debug("pipeline: phase complete",
		zap.String("phase", name),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
}
