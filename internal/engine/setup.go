package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/config"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/normalization"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/storage"
)

// ResolverFromConfig builds the contract convention resolver from the
// configured catalog.
func ResolverFromConfig(cfg *config.Config) (*normalization.CatalogResolver, error) {
	resolver := normalization.NewCatalogResolver(cfg.Contracts.LinearDerivativeExchanges)
	for _, spec := range cfg.Contracts.Catalog {
		conv, err := spec.Convention()
		if err != nil {
			return nil, err
		}
		resolver.Add(spec.Key(), conv)
	}
	return resolver, nil
}

// OptionsFromConfig assembles engine options from a run configuration and a
// candle accessor. Result stores stay nil; callers wire them when outputs
// should persist.
func OptionsFromConfig(cfg *config.Config, candles storage.CandleStore, logger zerolog.Logger) (Options, error) {
	span, err := cfg.SpanWindow()
	if err != nil {
		return Options{}, fmt.Errorf("span: %w", err)
	}
	target, err := cfg.TargetWindow()
	if err != nil {
		return Options{}, fmt.Errorf("target day: %w", err)
	}
	event, err := cfg.EventWindow()
	if err != nil {
		return Options{}, fmt.Errorf("event window: %w", err)
	}
	resolver, err := ResolverFromConfig(cfg)
	if err != nil {
		return Options{}, fmt.Errorf("contract catalog: %w", err)
	}

	return Options{
		Candles:           candles,
		Normalizer:        normalization.New(resolver, cfg.USDQuotes),
		Exchanges:         cfg.Exchanges,
		ReferenceExchange: cfg.ReferenceExchange,
		Span:              span,
		TargetDay:         target,
		EventWindow:       event,
		Distribution:      cfg.DistributionOptions(),
		IncludeTargetDay:  cfg.Reference.IncludeTargetDay,
		Workers:           cfg.Workers,
		Logger:            logger,
	}, nil
}
