package refcheck

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/professor/internal/metrics"
)

// Result is the outcome of one validate-and-rewrite pass.
type Result struct {
	FilteredText      string `json:"filtered_text"`
	TotalLinks        int    `json:"total_links"`
	ValidLinks        int    `json:"valid_links"`
	NeedsRegeneration bool   `json:"needs_regeneration"`
}

// Thresholds decide when a reference list is too broken to keep.
type Thresholds struct {
	MinValidLinks int
	MinValidRatio float64
}

// DefaultThresholds returns 3 valid links and a 0.5 valid ratio.
func DefaultThresholds() Thresholds {
	return Thresholds{MinValidLinks: 3, MinValidRatio: 0.5}
}

// NeedsRegeneration reports whether valid out of total links falls below
// either threshold. A document without links never needs regeneration.
func (t Thresholds) NeedsRegeneration(valid, total int) bool {
	if total == 0 {
		return false
	}
	ratio := float64(valid) / float64(total)
	return valid < t.MinValidLinks || ratio < t.MinValidRatio
}

// LinkChecker probes a batch of URLs. *Checker satisfies it.
type LinkChecker interface {
	CheckAll(ctx context.Context, urls []string) []Outcome
}

// Refiner runs refinement passes and the best-of-N regeneration loop.
type Refiner struct {
	checker     LinkChecker
	thresholds  Thresholds
	maxAttempts int
	logger      *slog.Logger
}

// NewRefiner creates a Refiner. maxAttempts below 1 means 3.
func NewRefiner(checker LinkChecker, thresholds Thresholds, maxAttempts int, logger *slog.Logger) *Refiner {
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refiner{
		checker:     checker,
		thresholds:  thresholds,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// ValidateAndFilter runs one refinement pass over markdown.
func (r *Refiner) ValidateAndFilter(ctx context.Context, markdown string) Result {
	res, _ := r.Inspect(ctx, markdown)
	return res
}

// Inspect is ValidateAndFilter that also returns the per-link outcomes.
func (r *Refiner) Inspect(ctx context.Context, markdown string) (Result, []Outcome) {
	urls := ExtractURLs(markdown)
	if len(urls) == 0 {
		return Result{FilteredText: markdown}, []Outcome{}
	}

	outcomes := r.checker.CheckAll(ctx, urls)
	valid := make(map[string]struct{}, len(outcomes))
	validLinks := 0
	for _, o := range outcomes {
		if o.Reachable {
			valid[o.URL] = struct{}{}
			validLinks++
		}
	}

	return Result{
		FilteredText:      RemoveInvalidLinks(markdown, valid),
		TotalLinks:        len(urls),
		ValidLinks:        validLinks,
		NeedsRegeneration: r.thresholds.NeedsRegeneration(validLinks, len(urls)),
	}, outcomes
}

// Attempt is one generated candidate and its refinement.
type Attempt[T any] struct {
	Number int
	Value  T
	Result Result
}

// GenerateFunc produces a fresh candidate for the given 1-based attempt.
type GenerateFunc[T any] func(ctx context.Context, attempt int) (T, error)

// BestOf asks generate for up to the Refiner's attempt limit of candidates,
// one at a time, stopping at the first that does not need regeneration. It
// returns the attempt with the most valid links; ties keep the earlier one.
//
// Running out of attempts is not an error: the best attempt comes back with
// NeedsRegeneration still set. A generation error fails the call only when
// no earlier attempt succeeded.
func BestOf[T any](ctx context.Context, r *Refiner, markdown func(T) string, generate GenerateFunc[T]) (Attempt[T], error) {
	var best Attempt[T]
	found := false
	used := 0

	for n := 1; n <= r.maxAttempts; n++ {
		used = n
		value, err := generate(ctx, n)
		if err != nil {
			if !found {
				return Attempt[T]{}, fmt.Errorf("refcheck: generate attempt %d: %w", n, err)
			}
			r.logger.Warn("reference regeneration failed, keeping best attempt",
				slog.Int("attempt", n),
				slog.Int("best_attempt", best.Number),
				slog.String("error", err.Error()))
			break
		}

		res := r.ValidateAndFilter(ctx, markdown(value))
		r.logger.Debug("reference attempt validated",
			slog.Int("attempt", n),
			slog.Int("total_links", res.TotalLinks),
			slog.Int("valid_links", res.ValidLinks),
			slog.Bool("needs_regeneration", res.NeedsRegeneration))

		if !found || res.ValidLinks > best.Result.ValidLinks {
			best = Attempt[T]{Number: n, Value: value, Result: res}
			found = true
		}
		if !res.NeedsRegeneration {
			break
		}
	}

	metrics.ReferenceAttempts.Observe(float64(used))
	return best, nil
}
