package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/intake"
	"github.com/sells-group/lead-cli/internal/pipeline"
	"github.com/sells-group/lead-cli/internal/scorer"
	"github.com/sells-group/lead-cli/internal/suggest"
)

// leadEnv holds the scoring pipeline and suggestion selector built from
// config for the score/add/suggest/serve commands.
type leadEnv struct {
	Pipeline *pipeline.Pipeline
	Selector *suggest.Selector
	Location *time.Location
}

// initEnv loads rule tables and the suggestion catalog named in config and
// builds the pipeline. A nil clock means the wall clock.
func initEnv(clock func() time.Time, opts ...pipeline.Option) (*leadEnv, error) {
	loc, err := cfg.Clock.Location()
	if err != nil {
		return nil, err
	}

	s, err := loadScorer()
	if err != nil {
		return nil, err
	}

	catalog := suggest.DefaultCatalog()
	if cfg.Suggest.CatalogFile != "" {
		catalog, err = suggest.LoadCatalog(cfg.Suggest.CatalogFile)
		if err != nil {
			return nil, err
		}
	}
	sel, err := suggest.NewSelector(catalog, cfg.Suggest.Max)
	if err != nil {
		return nil, err
	}

	if clock == nil {
		clock = time.Now
	}
	base := []pipeline.Option{
		pipeline.WithClock(clock),
		pipeline.WithLocation(loc),
		pipeline.WithEntryValidator(intake.NewEntryValidator(cfg.Intake.PhoneRegion)),
	}
	p := pipeline.New(s, append(base, opts...)...)

	zap.L().Debug("lead environment ready",
		zap.String("timezone", loc.String()),
		zap.String("rules_file", cfg.Scoring.RulesFile),
		zap.String("catalog_file", cfg.Suggest.CatalogFile),
		zap.Int("suggest_max", sel.Max()),
	)

	return &leadEnv{Pipeline: p, Selector: sel, Location: loc}, nil
}

// loadScorer builds a scorer from the configured rule file, or the
// built-in rules when none is set.
func loadScorer() (*scorer.Scorer, error) {
	if cfg.Scoring.RulesFile == "" {
		return scorer.NewDefault(), nil
	}
	rules, err := scorer.LoadRules(cfg.Scoring.RulesFile)
	if err != nil {
		return nil, err
	}
	return scorer.New(rules)
}

// fixedClock pins "today" for one command run. An empty date means the
// current instant; otherwise midnight of the given YYYY-MM-DD day.
func fixedClock(date string) (func() time.Time, error) {
	loc, err := cfg.Clock.Location()
	if err != nil {
		return nil, err
	}
	now := time.Now().In(loc)
	if date != "" {
		day, err := suggest.ParseDay(date, now, loc)
		if err != nil {
			return nil, eris.Wrap(err, "--date")
		}
		now = day
	}
	return func() time.Time { return now }, nil
}
