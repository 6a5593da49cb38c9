// Package builder turns a declarative layout into an infrastructure tree and
// returns its connection points in layout order.
package builder

import (
	"fmt"

	"github.com/kilianp07/chargeinfra/core/infrastructure"
	"github.com/kilianp07/chargeinfra/core/logger"
)

// Builder constructs infrastructure trees. Identifiers are drawn from the
// builder's IDGenerator, so two builders number their nodes independently.
type Builder struct {
	ids         *infrastructure.IDGenerator
	hook        infrastructure.LeafAggregator
	log         logger.Logger
	transformer *infrastructure.Transformer
}

// Option configures a Builder.
type Option func(*Builder)

// WithIDGenerator shares an identifier generator between builds.
func WithIDGenerator(g *infrastructure.IDGenerator) Option {
	return func(b *Builder) { b.ids = g }
}

// WithAggregator replaces the leaf aggregation hook run after each build.
func WithAggregator(h infrastructure.LeafAggregator) Option {
	return func(b *Builder) { b.hook = h }
}

// WithLogger sets the logger used to report built trees.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// New returns a Builder with its own IDGenerator and the BoundsAggregator hook.
func New(opts ...Option) *Builder {
	b := &Builder{
		ids:  infrastructure.NewIDGenerator(),
		hook: infrastructure.BoundsAggregator{},
		log:  logger.NopLogger{},
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Build is a shorthand for New().Build(cfg).
func Build(cfg Config) ([]*infrastructure.ConnectionPoint, error) {
	return New().Build(cfg)
}

// Transformer returns the root of the last successful build.
func (b *Builder) Transformer() *infrastructure.Transformer { return b.transformer }

// Build creates the tree described by cfg, runs the leaf aggregation hook
// once and returns all connection points in layout order.
func (b *Builder) Build(cfg Config) ([]*infrastructure.ConnectionPoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var (
		transformer *infrastructure.Transformer
		leafs       []*infrastructure.ConnectionPoint
		err         error
	)
	for ti, tc := range cfg.Transformers {
		transformer, err = infrastructure.NewTransformer(b.ids.Next(infrastructure.KindTransformer), *tc.MinPower, *tc.MaxPower)
		if err != nil {
			return nil, fmt.Errorf("%w: transformers[%d]: %w", ErrMalformedConfig, ti, err)
		}
		for ci, cc := range tc.ChargingPoints {
			cp, err := transformer.AddChargingPoint(b.ids.Next(infrastructure.KindChargingPoint), *cc.MinPower, *cc.MaxPower)
			if err != nil {
				return nil, fmt.Errorf("%w: charging_points[%d]: %w", ErrMalformedConfig, ci, err)
			}
			for pi, pc := range cc.ConnectionPoints {
				p, err := cp.AddConnectionPoint(b.ids.Next(infrastructure.KindConnectionPoint), *pc.MinPower, *pc.MaxPower)
				if err != nil {
					return nil, fmt.Errorf("%w: charging_points[%d].connection_points[%d]: %w", ErrMalformedConfig, ci, pi, err)
				}
				leafs = append(leafs, p)
			}
		}
	}
	if err := transformer.SetUpLeafs(b.hook); err != nil {
		return nil, fmt.Errorf("set up leafs: %w", err)
	}
	b.transformer = transformer
	b.log.Infof("built infrastructure %s: %d charging points, %d connection points",
		transformer.ID(), len(transformer.Children()), len(leafs))
	return leafs, nil
}
