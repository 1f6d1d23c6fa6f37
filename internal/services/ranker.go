package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/terraincognita07/cyclecore/internal/models"
)

const (
	ModelScoreWeight     = 0.4
	DefaultTipLimit      = 3
	DefaultScorerTimeout = 500 * time.Millisecond

	tagMatchWeight      = 2.0
	generalTipBoost     = 0.2
	phaseFeatureWeight  = 0.5
	symptomFeatureScale = 0.5
)

// Scorer is an optional external model returning one score per catalog tip,
// in catalog order.
type Scorer interface {
	Score(ctx context.Context, features models.FeatureVector) ([]float64, error)
}

type ScorerFunc func(ctx context.Context, features models.FeatureVector) ([]float64, error)

func (fn ScorerFunc) Score(ctx context.Context, features models.FeatureVector) ([]float64, error) {
	return fn(ctx, features)
}

type RankOptions struct {
	Phase                  models.Phase
	Mood                   models.Mood
	IncludeGeneralFallback bool
	Limit                  int
	Features               *models.FeatureVector
}

type RankedTip struct {
	Tip   models.TipRecord `json:"tip"`
	Score float64          `json:"score"`
}

type Ranker struct {
	catalog []models.TipRecord
	scorer  Scorer
	timeout time.Duration
}

// NewRanker copies the catalog. scorer may be nil.
func NewRanker(catalog []models.TipRecord, scorer Scorer, timeout time.Duration) *Ranker {
	if timeout <= 0 {
		timeout = DefaultScorerTimeout
	}
	return &Ranker{
		catalog: append([]models.TipRecord(nil), catalog...),
		scorer:  scorer,
		timeout: timeout,
	}
}

func (ranker *Ranker) Catalog() []models.TipRecord {
	return append([]models.TipRecord(nil), ranker.catalog...)
}

type scoredTip struct {
	tip   models.TipRecord
	score float64
}

// Rank orders the catalog for the given symptoms and context. Identical
// inputs always produce the same order; ties keep catalog order.
func (ranker *Ranker) Rank(ctx context.Context, symptomIDs []models.Symptom, options RankOptions) []RankedTip {
	limit := options.Limit
	if limit <= 0 {
		limit = DefaultTipLimit
	}

	requested := make(map[string]struct{}, len(symptomIDs))
	for _, symptom := range symptomIDs {
		requested[string(symptom)] = struct{}{}
	}

	var features models.FeatureVector
	if options.Features != nil {
		features = *options.Features
	}
	modelScores := ranker.modelScores(ctx, features, options.Features != nil)

	scored := make([]scoredTip, 0, len(ranker.catalog))
	for index, tip := range ranker.catalog {
		scored = append(scored, scoredTip{
			tip:   tip,
			score: scoreTip(tip, requested, options, features) + modelScores[index]*ModelScoreWeight,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	ranked := make([]RankedTip, 0, limit)
	used := make(map[string]struct{}, limit)
	for _, candidate := range scored {
		if len(ranked) >= limit {
			break
		}
		if _, duplicate := used[candidate.tip.ID]; duplicate {
			continue
		}
		if candidate.score <= 0 && !options.IncludeGeneralFallback {
			continue
		}
		used[candidate.tip.ID] = struct{}{}
		ranked = append(ranked, RankedTip{Tip: candidate.tip, Score: candidate.score})
	}

	if options.IncludeGeneralFallback {
		for _, tip := range ranker.catalog {
			if len(ranked) >= limit {
				break
			}
			if tip.Phase != models.PhaseGeneral {
				continue
			}
			if _, duplicate := used[tip.ID]; duplicate {
				continue
			}
			used[tip.ID] = struct{}{}
			ranked = append(ranked, RankedTip{Tip: tip})
		}
	}
	return ranked
}

func scoreTip(tip models.TipRecord, requested map[string]struct{}, options RankOptions, features models.FeatureVector) float64 {
	tagMatches := 0
	for _, tag := range tip.Tags {
		if _, ok := requested[tag]; ok {
			tagMatches++
		}
	}

	score := tagMatchWeight * float64(tagMatches)
	if options.Phase.IsCyclePhase() && tip.Phase == options.Phase {
		score++
	}
	if options.Mood != "" && tip.Mood == options.Mood {
		score++
	}
	if tip.Phase == models.PhaseGeneral {
		score += generalTipBoost
	}

	switch tip.Phase {
	case models.PhaseMenstrual:
		score += phaseFeatureWeight * features[FeatureMenstrualPhase]
	case models.PhaseLuteal:
		score += phaseFeatureWeight * features[FeatureDayInCycle]
	}
	score += float64(tagMatches) * features[FeatureAvgSeverity] * symptomFeatureScale
	return score
}

type scorerResult struct {
	scores []float64
	err    error
}

// modelScores never fails. A missing scorer, an error, a timeout, a panic or
// a vector whose length differs from the catalog all yield zero for every tip.
func (ranker *Ranker) modelScores(ctx context.Context, features models.FeatureVector, hasFeatures bool) []float64 {
	zero := make([]float64, len(ranker.catalog))
	if ranker.scorer == nil || !hasFeatures || len(ranker.catalog) == 0 {
		return zero
	}

	scoreCtx, cancel := context.WithTimeout(ctx, ranker.timeout)
	defer cancel()

	results := make(chan scorerResult, 1)
	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				results <- scorerResult{err: fmt.Errorf("scorer panic: %v", recovered)}
			}
		}()
		scores, err := ranker.scorer.Score(scoreCtx, features)
		results <- scorerResult{scores: scores, err: err}
	}()

	select {
	case <-scoreCtx.Done():
		return zero
	case result := <-results:
		if result.err != nil || len(result.scores) != len(ranker.catalog) {
			return zero
		}
		scores := make([]float64, len(ranker.catalog))
		for index := range scores {
			if value := result.scores[index]; !math.IsNaN(value) && !math.IsInf(value, 0) {
				scores[index] = value
			}
		}
		return scores
	}
}
