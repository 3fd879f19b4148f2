package eip712

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clear-signing/erc7730/abi"
	"github.com/clear-signing/erc7730/model"
	"github.com/clear-signing/erc7730/network"
	"github.com/clear-signing/erc7730/output"
	"github.com/clear-signing/erc7730/paths"
)

// Convert lowers a resolved EIP-712 descriptor into legacy dapp descriptors,
// one per chain the descriptor is deployed on. A nil result means the
// descriptor could not be converted at all; per-deployment failures only
// drop that chain's artifact.
func Convert(d *model.ResolvedDescriptor, out output.Adder) []Descriptor {
	if d.Context.EIP712 == nil {
		out.Error("Invalid context", "legacy dapp descriptors require an eip712 binding")
		return nil
	}
	binding := d.Context.EIP712

	dappName := ""
	if binding.Domain != nil {
		dappName = binding.Domain.Name
	}
	if dappName == "" {
		out.Error("Missing domain name", "the EIP-712 domain name is required for legacy descriptors")
		return nil
	}
	if d.Metadata.Owner == "" {
		out.Error("Missing owner", "metadata.owner is required for legacy descriptors")
		return nil
	}
	if len(d.Metadata.Maps) > 0 {
		out.Warning("Unsupported maps",
			"metadata.maps lookups cannot be represented in the legacy dapp format and are dropped")
	}

	domainFields := reconstructDomain(binding.Domain, len(binding.Deployments) > 0, out)

	keys := make([]string, 0, len(d.Display.Formats))
	for key := range d.Display.Formats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var messages []Message
	for _, key := range keys {
		format := d.Display.Formats[key]
		schema, ok := messageSchema(key, binding.Schemas, domainFields, out)
		if !ok {
			return nil
		}
		fields, ok := convertFields(format.Fields, out)
		if !ok {
			return nil
		}
		label := schema.Primary
		if format.Intent != nil && format.Intent.Simple != "" {
			label = format.Intent.Simple
		}
		messages = append(messages, Message{
			Schema: schema.Types,
			Mapper: Mapper{Label: label, Fields: fields},
		})
	}

	byChain := map[int64]*Descriptor{}
	var chains []int64
	for _, deployment := range binding.Deployments {
		name, ok := network.Name(deployment.ChainID)
		if !ok {
			out.Error("Unsupported network",
				fmt.Sprintf("chain id %d has no known network name", deployment.ChainID))
			continue
		}
		artifact := byChain[deployment.ChainID]
		if artifact == nil {
			artifact = &Descriptor{
				BlockchainName: name,
				ChainID:        deployment.ChainID,
				Name:           dappName,
			}
			byChain[deployment.ChainID] = artifact
			chains = append(chains, deployment.ChainID)
		}
		artifact.Contracts = append(artifact.Contracts, Contract{
			Address:      strings.ToLower(deployment.Address),
			ContractName: d.Metadata.Owner,
			Messages:     messages,
		})
	}

	sort.Slice(chains, func(i, j int) bool { return chains[i] < chains[j] })
	artifacts := make([]Descriptor, 0, len(chains))
	for _, chain := range chains {
		artifacts = append(artifacts, *byChain[chain])
	}
	return artifacts
}

// reconstructDomain rebuilds the EIP712Domain type in canonical member order:
// name, version, chainId, verifyingContract. The chain binding members are
// only present when the descriptor has deployments.
func reconstructDomain(domain *model.Domain, hasDeployments bool, out output.Adder) []abi.EIP712Field {
	if domain == nil || domain.Name == "" {
		out.Warning("Missing domain name",
			"the EIP-712 domain name is not set, adding it to the schema as a string anyway")
	}
	if domain == nil || domain.Version == "" {
		out.Warning("Missing domain version",
			"the EIP-712 domain version is not set, adding it to the schema as a string anyway")
	}
	fields := []abi.EIP712Field{
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
	}
	if hasDeployments {
		fields = append(fields,
			abi.EIP712Field{Name: "chainId", Type: "uint256"},
			abi.EIP712Field{Name: "verifyingContract", Type: "address"},
		)
	}
	return fields
}

// messageSchema finds the schema a format key refers to: by primary type name
// among the context schemas first, then by parsing the key itself as an
// encodeType string. The reconstructed EIP712Domain type is added either way.
func messageSchema(
	key string,
	schemas []model.EIP712JsonSchema,
	domainFields []abi.EIP712Field,
	out output.Adder,
) (abi.EIP712Schema, bool) {
	for _, s := range schemas {
		if s.PrimaryType == key {
			return withDomain(s.Schema(), domainFields), true
		}
	}
	parsed, err := abi.ParseEncodeType(key)
	if err != nil {
		if len(schemas) > 0 {
			out.Error("Missing schema",
				fmt.Sprintf("no schema declares primary type %q", key))
		} else {
			out.Error("Invalid encodeType",
				fmt.Sprintf("format key %q cannot be parsed as an encodeType string: %s", key, err))
		}
		return abi.EIP712Schema{}, false
	}
	return withDomain(parsed, domainFields), true
}

func withDomain(schema abi.EIP712Schema, domainFields []abi.EIP712Field) abi.EIP712Schema {
	types := make(map[string][]abi.EIP712Field, len(schema.Types)+1)
	for name, fields := range schema.Types {
		types[name] = fields
	}
	types["EIP712Domain"] = domainFields
	return abi.EIP712Schema{Primary: schema.Primary, Types: types}
}

// convertFields flattens a resolved field tree into mapper fields. Groups
// contribute their children; the legacy format has a flat field list.
func convertFields(fields []model.ResolvedField, out output.Adder) ([]Field, bool) {
	var converted []Field
	for _, field := range fields {
		switch f := field.(type) {
		case model.ResolvedNestedFields:
			children, ok := convertFields(f.Fields, out)
			if !ok {
				return nil, false
			}
			converted = append(converted, children...)
		case model.ResolvedFieldDescription:
			if f.Hidden() {
				continue
			}
			c, ok := convertField(f, out)
			if !ok {
				return nil, false
			}
			converted = append(converted, c)
		default:
			out.Error("Invalid display field", fmt.Sprintf("unhandled field type %T", field))
			return nil, false
		}
	}
	return converted, true
}

func convertField(field model.ResolvedFieldDescription, out output.Adder) (Field, bool) {
	if field.Value != nil {
		out.Error("Constant values not supported",
			"constant valued fields cannot be represented in the legacy dapp format")
		return Field{}, false
	}
	dataPath, ok := field.Path.(paths.DataPath)
	if !ok {
		out.Error("Unsupported path",
			fmt.Sprintf("path %s cannot be represented in the legacy dapp format", field.Path))
		return Field{}, false
	}

	converted := Field{
		Path:  paths.ToRelative(dataPath).String(),
		Label: field.Label,
	}

	switch field.Format {
	case "", model.FormatRaw, model.FormatEnum, model.FormatUnit, model.FormatDuration,
		model.FormatTokenTicker:
		converted.Format = FormatRaw

	case model.FormatDate:
		converted.Format = FormatDatetime

	case model.FormatAmount:
		converted.Format = FormatAmount

	case model.FormatTokenAmount:
		format, assetPath, ok := tokenAmountFormat(field, out)
		if !ok {
			return Field{}, false
		}
		converted.Format = format
		converted.AssetPath = assetPath

	case model.FormatAddressName, model.FormatNftName, model.FormatInteroperableAddressName:
		converted.Format = FormatTrustedName
		if p, ok := field.Params.(model.ResolvedAddressNameParameters); ok {
			converted.NameTypes = nameTypes(p.Type)
			converted.NameSources = nameSources(p.Type, p.Sources)
		}

	case model.FormatCallData:
		converted.Format = FormatCalldata
		if p, ok := field.Params.(model.ResolvedCallDataParameters); ok && p.CalleePath != nil {
			callee, ok := calldataParamPath(p.CalleePath, out)
			if !ok {
				return Field{}, false
			}
			converted.CalleePath = callee
		}

	default:
		out.Error("Unsupported format",
			fmt.Sprintf("field format %q cannot be represented in the legacy dapp format", field.Format))
		return Field{}, false
	}

	return converted, true
}

// tokenAmountFormat derives the format and assetPath of a token amount
// field. A "@.to" token path means the token is the verifying contract
// itself, which the legacy format expresses by omitting the asset path. A
// token path crossing an array cannot be linked in the legacy format, so the
// field degrades to raw display.
func tokenAmountFormat(field model.ResolvedFieldDescription, out output.Adder) (Format, string, bool) {
	p, ok := field.Params.(model.ResolvedTokenAmountParameters)
	if !ok || p.TokenPath == nil {
		return FormatAmount, "", true
	}
	switch tp := p.TokenPath.(type) {
	case paths.ContainerPath:
		if tp.Field == paths.ContainerTo {
			return FormatAmount, "", true
		}
		out.Error("Unsupported token path",
			fmt.Sprintf("token path %s cannot be represented in the legacy dapp format", tp))
		return "", "", false
	case paths.DataPath:
		if paths.ContainsArray(tp) {
			out.Warning("Unsupported token path",
				fmt.Sprintf("token path %s crosses an array, the field is displayed raw", tp))
			return FormatRaw, "", true
		}
		return FormatAmount, paths.ToRelative(tp).String(), true
	default:
		out.Error("Unsupported token path",
			fmt.Sprintf("token path %s cannot be represented in the legacy dapp format", p.TokenPath))
		return "", "", false
	}
}

func calldataParamPath(p paths.Path, out output.Adder) (string, bool) {
	switch p := p.(type) {
	case paths.DataPath:
		return paths.ToRelative(p).String(), true
	case paths.ContainerPath:
		if p.Field == paths.ContainerTo {
			return p.String(), true
		}
	}
	out.Error("Unsupported path",
		fmt.Sprintf("path %s cannot be used as a calldata parameter in the legacy dapp format", p))
	return "", false
}

// nameTypes maps a descriptor address type restriction to legacy name types.
func nameTypes(t model.AddressNameType) []string {
	switch t {
	case model.AddressTypeWallet:
		return []string{"wallet"}
	case model.AddressTypeEOA:
		return []string{"eoa"}
	case model.AddressTypeContract:
		return []string{"smart_contract"}
	case model.AddressTypeToken:
		return []string{"token"}
	case model.AddressTypeNFT:
		return []string{"collection"}
	default:
		return nil
	}
}

// nameSources maps descriptor name sources to legacy sources, defaulting per
// address type: name services for accounts, curated lists for contracts and
// assets.
func nameSources(t model.AddressNameType, sources []model.AddressNameSource) []string {
	var out []string
	switch t {
	case model.AddressTypeWallet, model.AddressTypeEOA, model.AddressTypeNFT:
		out = append(out, "ens", "unstoppable_domain", "freename")
	case model.AddressTypeContract, model.AddressTypeToken:
		out = append(out, "crypto_asset_list")
	}
	for _, s := range sources {
		switch s {
		case model.AddressSourceLocal:
			out = appendUnique(out, "local_address_book")
		case model.AddressSourceENS:
			out = appendUnique(out, "ens")
		default:
			out = appendUnique(out, string(s))
		}
	}
	return out
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
