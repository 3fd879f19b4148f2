// Package network maps EIP-155 chain ids to the network names used in
// generated artifacts. Descriptors deployed on chains absent from this table
// are skipped with a warning rather than failing the whole conversion.
package network

var names = map[int64]string{
	1:        "ethereum",
	10:       "optimism",
	14:       "flare",
	25:       "cronos",
	56:       "bsc",
	100:      "gnosis",
	137:      "polygon",
	146:      "sonic",
	250:      "fantom",
	324:      "zksync",
	1101:     "polygon_zkevm",
	5000:     "mantle",
	8453:     "base",
	42161:    "arbitrum",
	42220:    "celo",
	43114:    "avalanche",
	59144:    "linea",
	81457:    "blast",
	534352:   "scroll",
	11155111: "ethereum_sepolia",
}

// Name returns the network name for a chain id, and whether the chain is
// known.
func Name(chainID int64) (string, bool) {
	name, ok := names[chainID]
	return name, ok
}
