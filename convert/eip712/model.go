// Package eip712 lowers a resolved EIP-712 descriptor into the legacy dapp
// descriptor format used by hardware wallet registries, one artifact per
// chain.
package eip712

import "github.com/clear-signing/erc7730/abi"

// Format selects how a mapper field is rendered on the device.
type Format string

const (
	FormatRaw         Format = "raw"
	FormatAmount      Format = "amount"
	FormatDatetime    Format = "datetime"
	FormatTrustedName Format = "trusted-name"
	FormatCalldata    Format = "calldata"
)

// Descriptor is one legacy dapp descriptor, covering every contract the
// source descriptor binds on a single chain.
type Descriptor struct {
	BlockchainName string     `json:"blockchainName"`
	ChainID        int64      `json:"chainId"`
	Name           string     `json:"name"`
	Contracts      []Contract `json:"contracts"`
}

// Contract is one contract binding with its clear-signed messages.
type Contract struct {
	Address      string    `json:"address"`
	ContractName string    `json:"contractName"`
	Messages     []Message `json:"messages"`
}

// Message pairs an EIP-712 type schema with the display mapper for messages
// conforming to it.
type Message struct {
	Schema map[string][]abi.EIP712Field `json:"schema"`
	Mapper Mapper                       `json:"mapper"`
}

// Mapper is the display instructions for one message type.
type Mapper struct {
	Label  string  `json:"label"`
	Fields []Field `json:"fields"`
}

// Field maps one message value to a display instruction. Paths are relative
// to the message root, dot separated, with "[]" for array levels.
type Field struct {
	Path        string   `json:"path"`
	Label       string   `json:"label"`
	AssetPath   string   `json:"assetPath,omitempty"`
	Format      Format   `json:"format,omitempty"`
	NameTypes   []string `json:"nameTypes,omitempty"`
	NameSources []string `json:"nameSources,omitempty"`
	CalleePath  string   `json:"calleePath,omitempty"`
}
