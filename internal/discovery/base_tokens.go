package discovery

// RaydiumAMMV4 is the Raydium liquidity pool V4 program address.
const RaydiumAMMV4 = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"

// Well-known base token mints. A pool pairs a base token with the token
// being launched; the non-base side is the one worth evaluating.
const (
	WSOLMint = "So11111111111111111111111111111111111111112"
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	USDTMint = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

// baseTokens is the default base token set.
var baseTokens = map[string]bool{
	WSOLMint: true,
	USDCMint: true,
	USDTMint: true,
}

// IsBaseToken reports whether mint is in the base token set.
func IsBaseToken(mint string) bool {
	return baseTokens[mint]
}

// ClassifyPair inspects the two mints of a new pool and returns the
// non-base token address. ok is false when both sides are base tokens
// (an uninteresting base/base pool) or neither side is (a pairing this
// pipeline does not evaluate).
func ClassifyPair(mintA, mintB string) (token string, ok bool) {
	aBase := IsBaseToken(mintA)
	bBase := IsBaseToken(mintB)

	switch {
	case aBase && !bBase:
		return mintB, true
	case bBase && !aBase:
		return mintA, true
	default:
		return "", false
	}
}
