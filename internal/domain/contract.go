package domain

// ConventionKind distinguishes how a contract denominates volume.
type ConventionKind string

const (
	// ConventionLinear covers spot and quote-margined contracts: volume is
	// base-asset units, notional = volume * price.
	ConventionLinear ConventionKind = "LINEAR"

	// ConventionInverse covers coin-margined contracts: volume is a contract
	// count, each contract worth a fixed USD notional.
	ConventionInverse ConventionKind = "INVERSE"
)

// ContractConvention is the tagged union consumed by the normalizer.
// ContractSizeUSD is meaningful only for inverse contracts.
type ContractConvention struct {
	Kind            ConventionKind
	ContractSizeUSD float64
}

// Linear returns the convention for spot and linear contracts.
func Linear() ContractConvention {
	return ContractConvention{Kind: ConventionLinear}
}

// Inverse returns the convention for an inverse contract with the given
// fixed USD notional per contract.
func Inverse(contractSizeUSD float64) ContractConvention {
	return ContractConvention{Kind: ConventionInverse, ContractSizeUSD: contractSizeUSD}
}
