// Package normalization converts heterogeneous per-venue quantities into a
// comparable USD-notional basis.
package normalization

import (
	"errors"
	"fmt"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
)

// ErrUnknownConvention is returned when a market cannot be classified as
// linear or inverse. Fatal for that market's contribution: defaulting to the
// linear formula would misstate notional by the price level.
var ErrUnknownConvention = errors.New("unknown contract convention")

// ErrNonUSDQuote is returned for markets quoted in an asset the run does not
// treat as USD-like; their notional is not comparable without FX data.
var ErrNonUSDQuote = errors.New("quote currency not USD-like")

// DefaultUSDQuotes are quote assets treated as 1:1 USD for aggregation,
// carried over from the original analysis.
var DefaultUSDQuotes = []string{"usd", "usdt", "usdc", "eur"}

// SpecResolver resolves the contract convention for a market.
type SpecResolver interface {
	// Resolve returns the convention for key, or ErrUnknownConvention when
	// the market cannot be classified.
	Resolve(key domain.MarketKey) (domain.ContractConvention, error)
}

// CatalogResolver resolves conventions from an explicit per-market catalog
// with a spot/linear fallback. Spot markets are always linear; derivatives
// without a catalog entry are refused rather than assumed linear.
type CatalogResolver struct {
	overrides map[string]domain.ContractConvention
	// LinearDerivativeExchanges lists venues whose USD-quoted derivatives
	// are known quote-margined, so they classify as linear without a
	// per-market entry.
	linearDerivatives map[string]bool
}

// NewCatalogResolver builds a resolver. linearDerivativeExchanges may be nil.
func NewCatalogResolver(linearDerivativeExchanges []string) *CatalogResolver {
	linear := make(map[string]bool, len(linearDerivativeExchanges))
	for _, ex := range linearDerivativeExchanges {
		linear[ex] = true
	}
	return &CatalogResolver{
		overrides:         make(map[string]domain.ContractConvention),
		linearDerivatives: linear,
	}
}

// Add registers an explicit convention for one market.
func (r *CatalogResolver) Add(key domain.MarketKey, conv domain.ContractConvention) {
	r.overrides[key.String()] = conv
}

// Resolve implements SpecResolver.
func (r *CatalogResolver) Resolve(key domain.MarketKey) (domain.ContractConvention, error) {
	if conv, ok := r.overrides[key.String()]; ok {
		return conv, nil
	}
	if key.IsSpot() {
		return domain.Linear(), nil
	}
	if r.linearDerivatives[key.Exchange] {
		return domain.Linear(), nil
	}
	return domain.ContractConvention{}, fmt.Errorf("%w: %s", ErrUnknownConvention, key)
}

// Normalizer converts candles to USD notional flows.
type Normalizer struct {
	resolver  SpecResolver
	usdQuotes map[string]bool
}

// New creates a Normalizer. usdQuotes defaults to DefaultUSDQuotes when nil.
func New(resolver SpecResolver, usdQuotes []string) *Normalizer {
	if usdQuotes == nil {
		usdQuotes = DefaultUSDQuotes
	}
	set := make(map[string]bool, len(usdQuotes))
	for _, q := range usdQuotes {
		set[q] = true
	}
	return &Normalizer{resolver: resolver, usdQuotes: set}
}

// BarNotional converts one bar's traded volume to USD notional.
// Linear and spot: base volume times the bar's mid price. Inverse: contract
// count times fixed contract size, price cancels out of the conversion.
func (n *Normalizer) BarNotional(c *domain.Candle) (float64, error) {
	if !n.usdQuotes[c.Key.Quote] {
		return 0, fmt.Errorf("%w: %s quoted in %s", ErrNonUSDQuote, c.Key, c.Key.Quote)
	}

	conv, err := n.resolver.Resolve(c.Key)
	if err != nil {
		return 0, err
	}

	switch conv.Kind {
	case domain.ConventionLinear:
		return c.Volume * c.Mid(), nil
	case domain.ConventionInverse:
		return c.Volume * conv.ContractSizeUSD, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownConvention, c.Key)
	}
}

// WindowFlow sums one market's USD notional over a window. Only bars with
// open timestamp in [start, end) contribute.
func (n *Normalizer) WindowFlow(candles []*domain.Candle, window domain.Window) (*domain.NormalizedFlow, error) {
	flow := &domain.NormalizedFlow{Window: window}
	if len(candles) > 0 {
		flow.Key = candles[0].Key
	}
	for _, c := range candles {
		if !window.Contains(c.TimestampMs) {
			continue
		}
		notional, err := n.BarNotional(c)
		if err != nil {
			return nil, err
		}
		flow.USDVolume += notional
		flow.BarCount++
	}
	return flow, nil
}
