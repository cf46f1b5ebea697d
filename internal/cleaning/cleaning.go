// Package cleaning implements the remediation stages of the telecom dataset:
// deduplication, label canonicalization, missing-value resolution, outlier
// handling and consistency repair. Each stage interprets a declarative rule
// table from Rules and mutates the Dataset it is handed.
package cleaning

import (
	"telcoclean/pkg/contracts/domain"
)

// Stages holds the five compiled stages of one rule set.
type Stages struct {
	Dedup       *Deduplicator
	Canonical   *Canonicalizer
	Missing     *MissingValueResolver
	Outliers    *OutlierHandler
	Consistency *ConsistencyRepairer
}

// NewStages compiles rules. Any invalid rule fails the whole set.
func NewStages(rules Rules) (*Stages, error) {
	dedup, err := NewDeduplicator(rules.Keys)
	if err != nil {
		return nil, err
	}
	canonical, err := NewCanonicalizer(rules.Mappings)
	if err != nil {
		return nil, err
	}
	missing, err := NewMissingValueResolver(rules.Missing)
	if err != nil {
		return nil, err
	}
	outliers, err := NewOutlierHandler(rules.Outliers)
	if err != nil {
		return nil, err
	}
	consistency, err := NewConsistencyRepairer(rules.Repairs)
	if err != nil {
		return nil, err
	}

	return &Stages{
		Dedup:       dedup,
		Canonical:   canonical,
		Missing:     missing,
		Outliers:    outliers,
		Consistency: consistency,
	}, nil
}

// Stage identifiers, in pipeline order.
const (
	StageDedup       = "dedup"
	StageCanonical   = "canonicalize"
	StageMissing     = "missing_values"
	StageOutliers    = "outliers"
	StageConsistency = "consistency"
)

// Stage is one compiled stage bound to its identifier. Apply returns the
// number of values it changed; removed rows are not included.
type Stage struct {
	ID    string
	Apply func(ds *domain.Dataset, corrections *Corrections) int
}

// Ordered returns the stages in the order they must run. Both Clean and the
// operations pipeline run this list.
func (s *Stages) Ordered() []Stage {
	return []Stage{
		{ID: StageDedup, Apply: func(ds *domain.Dataset, c *Corrections) int {
			s.Dedup.Apply(ds, c)
			return 0
		}},
		{ID: StageCanonical, Apply: func(ds *domain.Dataset, c *Corrections) int {
			return sumCounts(s.Canonical.Apply(ds, c))
		}},
		{ID: StageMissing, Apply: func(ds *domain.Dataset, c *Corrections) int {
			return sumCounts(s.Missing.Apply(ds, c))
		}},
		{ID: StageOutliers, Apply: func(ds *domain.Dataset, c *Corrections) int {
			return sumCounts(s.Outliers.Apply(ds, c))
		}},
		{ID: StageConsistency, Apply: func(ds *domain.Dataset, c *Corrections) int {
			return sumCounts(s.Consistency.Apply(ds, c))
		}},
	}
}

// Clean runs all stages in order on ds and returns it. It is the in-process
// runner used where no step tracking or telemetry is wanted.
func (s *Stages) Clean(ds *domain.Dataset, corrections *Corrections) *domain.Dataset {
	for _, stage := range s.Ordered() {
		stage.Apply(ds, corrections)
	}
	return ds
}

func sumCounts[K comparable](m map[K]int) int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}
