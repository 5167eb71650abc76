package domain

import "math/rand"

// SelectorRegistry maps each LocationStrategy to its Selector
type SelectorRegistry struct {
	selectors map[LocationStrategy]Selector
	fallback  Selector
}

type registryConfig struct {
	rng       *rand.Rand
	isEmpty   EmptinessCheck
	overrides []Selector
}

// RegistryOption configures NewSelectorRegistry
type RegistryOption func(*registryConfig)

// WithRandomSource injects the source used by the random strategy
func WithRandomSource(rng *rand.Rand) RegistryOption {
	return func(c *registryConfig) { c.rng = rng }
}

// WithEmptinessCheck replaces the nearest-empty emptiness predicate
func WithEmptinessCheck(check EmptinessCheck) RegistryOption {
	return func(c *registryConfig) { c.isEmpty = check }
}

// WithSelector registers sel for its strategy, replacing the built-in one
func WithSelector(sel Selector) RegistryOption {
	return func(c *registryConfig) { c.overrides = append(c.overrides, sel) }
}

// NewSelectorRegistry builds the registry with a selector for every strategy
func NewSelectorRegistry(opts ...RegistryOption) *SelectorRegistry {
	cfg := &registryConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	random := newRandomSelector(cfg.rng)
	r := &SelectorRegistry{
		selectors: map[LocationStrategy]Selector{
			StrategyFixed:             newFixedSelector(),
			StrategyNearestEmpty:      newNearestEmptySelector(cfg.isEmpty),
			StrategyBulkLocation:      newBulkLocationSelector(),
			StrategyFastMoving:        newFastMovingSelector(),
			StrategyZoneBased:         newZoneBasedSelector(),
			StrategyCapacityOptimized: newCapacityOptimizedSelector(),
			StrategyFIFO:              newFIFOSelector(),
			StrategyLIFO:              newLIFOSelector(),
			StrategyRandom:            random,
			StrategyLowestLevel:       newLowestLevelSelector(),
			StrategyHighestLevel:      newHighestLevelSelector(),
		},
		fallback: random,
	}
	for _, sel := range cfg.overrides {
		r.selectors[sel.Strategy()] = sel
		if sel.Strategy() == StrategyRandom {
			r.fallback = sel
		}
	}
	return r
}

// Resolve returns the selector for strategy, falling back to random selection
func (r *SelectorRegistry) Resolve(strategy LocationStrategy) Selector {
	if sel, ok := r.selectors[strategy]; ok {
		return sel
	}
	return r.fallback
}

// Bonus returns the score bonus function of strategy's selector
func (r *SelectorRegistry) Bonus(strategy LocationStrategy) ScoreBonus {
	return r.Resolve(strategy).ScoreBonus
}

// Strategies returns the strategies with a registered selector
func (r *SelectorRegistry) Strategies() []LocationStrategy {
	out := make([]LocationStrategy, 0, len(r.selectors))
	for _, s := range AllStrategies() {
		if _, ok := r.selectors[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
