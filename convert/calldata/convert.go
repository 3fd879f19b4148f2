package calldata

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/clear-signing/erc7730/abi"
	"github.com/clear-signing/erc7730/model"
	"github.com/clear-signing/erc7730/network"
	"github.com/clear-signing/erc7730/output"
	"github.com/clear-signing/erc7730/paths"
)

// Convert lowers a resolved contract descriptor into calldata descriptor
// artifacts, one per (deployment, selector) pair. Failures are unit scoped:
// an unknown chain skips that deployment with a warning, a bad format skips
// that selector with an error, and the remaining pairs still convert.
func Convert(d *model.ResolvedDescriptor, source string, out output.Adder) []Descriptor {
	if d.Context.Contract == nil {
		out.Error("Invalid context", "calldata descriptors require a contract binding")
		return nil
	}
	contract := d.Context.Contract
	functions := abi.FunctionsBySelector(contract.ABI)
	enums, enumIndex := convertEnums(d.Metadata.Enums)
	if len(d.Metadata.Maps) > 0 {
		out.Warning("Unsupported maps",
			"metadata.maps lookups cannot be represented in calldata descriptors and are dropped")
	}

	selectors := make([]string, 0, len(d.Display.Formats))
	for selector := range d.Display.Formats {
		selectors = append(selectors, selector)
	}
	sort.Strings(selectors)

	// each format converts once; the result is shared by every deployment,
	// so a failing selector reports exactly one error
	var conversions []selectorConversion
	for _, selector := range selectors {
		format := d.Display.Formats[selector]
		fn, ok := functions[selector]
		if !ok {
			out.Error("Invalid selector",
				fmt.Sprintf("selector %s has no matching function in the contract ABI", selector))
			continue
		}
		c, ok := convertSelector(selector, fn, format, enumIndex, out)
		if !ok {
			continue
		}
		conversions = append(conversions, c)
	}

	var meta TransactionInfo
	meta.CreatorName = d.Metadata.Owner
	if d.Metadata.Info != nil {
		meta.CreatorLegalName = d.Metadata.Info.LegalName
		meta.CreatorURL = d.Metadata.Info.URL
		meta.DeployDate = d.Metadata.Info.LastUpdate
	}
	if d.Metadata.Token != nil {
		meta.ContractName = d.Metadata.Token.Name
	}

	var artifacts []Descriptor
	for _, deployment := range contract.Deployments {
		name, ok := network.Name(deployment.ChainID)
		if !ok {
			out.Warning("Unknown chain",
				fmt.Sprintf("chain id %d has no known network name, skipping deployment %s",
					deployment.ChainID, deployment.Address))
			continue
		}
		for _, c := range conversions {
			info := meta
			info.ChainID = deployment.ChainID
			info.Address = deployment.Address
			info.Selector = c.selector
			info.Hash = c.hash
			info.OperationType = c.operationType
			artifacts = append(artifacts, Descriptor{
				Source:          source,
				Network:         name,
				ChainID:         deployment.ChainID,
				Address:         deployment.Address,
				Selector:        c.selector,
				TransactionInfo: info,
				Enums:           enums,
				Fields:          c.fields,
			})
		}
	}
	return artifacts
}

// selectorConversion is one format lowered independently of any deployment:
// the flattened instructions, their content hash and the operation label.
type selectorConversion struct {
	selector      string
	operationType string
	hash          string
	fields        []Field
}

func convertSelector(
	selector string,
	fn abi.Function,
	format model.ResolvedFormat,
	enumIndex map[string]int,
	out output.Adder,
) (selectorConversion, bool) {
	fields, ok := convertFields(fn, abi.FunctionPaths(fn), format.Fields, enumIndex, out)
	if !ok {
		return selectorConversion{}, false
	}

	hash := sha3.New256()
	for i := range fields {
		raw, _ := hex.DecodeString(strings.TrimPrefix(fields[i].Descriptor, "0x"))
		hash.Write(raw)
	}

	return selectorConversion{
		selector:      selector,
		operationType: operationType(format, selector),
		hash:          fmt.Sprintf("%x", hash.Sum(nil)),
		fields:        fields,
	}, true
}

// operationType picks the operation label shown on the device: the format's
// simple intent when present, then the format id, then the bare selector.
func operationType(format model.ResolvedFormat, selector string) string {
	if format.Intent != nil && format.Intent.Simple != "" {
		return format.Intent.Simple
	}
	if format.ID != "" {
		return format.ID
	}
	return selector
}

// convertFields flattens a resolved field tree into display instructions.
// Labeled groups contribute their children directly; the artifact field list
// is flat.
func convertFields(
	fn abi.Function,
	known abi.PathSet,
	fields []model.ResolvedField,
	enumIndex map[string]int,
	out output.Adder,
) ([]Field, bool) {
	var converted []Field
	for _, field := range fields {
		switch f := field.(type) {
		case model.ResolvedNestedFields:
			children, ok := convertFields(fn, known, f.Fields, enumIndex, out)
			if !ok {
				return nil, false
			}
			converted = append(converted, children...)
		case model.ResolvedFieldDescription:
			if f.Hidden() {
				continue
			}
			c, ok := convertField(fn, known, f, enumIndex, out)
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

func convertField(
	fn abi.Function,
	known abi.PathSet,
	field model.ResolvedFieldDescription,
	enumIndex map[string]int,
	out output.Adder,
) (Field, bool) {
	value, ok := fieldValue(fn, known, field, out)
	if !ok {
		return Field{}, false
	}
	param, ok := fieldParam(fn, known, field, value, enumIndex, out)
	if !ok {
		return Field{}, false
	}
	encoded := encodeField(field.Label, param)
	return Field{
		Name:       field.Label,
		Param:      param,
		Descriptor: fmt.Sprintf("0x%x", encoded),
	}, true
}

// fieldValue builds the field's own value: the converted path, or a typed
// constant when the field carries an inline value instead.
func fieldValue(
	fn abi.Function,
	known abi.PathSet,
	field model.ResolvedFieldDescription,
	out output.Adder,
) (Value, bool) {
	if field.Path != nil {
		return convertValue(fn, known, field.Path, out)
	}
	return constantValue(field.Format, field.Value, out)
}

// constantAbiType maps a display format to the ABI type its inline constants
// are encoded as.
func constantAbiType(format model.FieldFormat) string {
	switch format {
	case model.FormatAddressName:
		return "address"
	case model.FormatCallData:
		return "bytes"
	case model.FormatAmount, model.FormatTokenAmount, model.FormatDate,
		model.FormatDuration, model.FormatUnit, model.FormatEnum, model.FormatNftName:
		return "uint256"
	default:
		return "string"
	}
}

func constantValue(format model.FieldFormat, value any, out output.Adder) (Value, bool) {
	abiType := constantAbiType(format)
	encoded, err := abi.EncodeValue(abiType, value)
	if err != nil {
		out.Error("Invalid display field",
			fmt.Sprintf("constant value %v cannot be encoded: %s", value, err))
		return nil, false
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(encoded, "0x"))
	if err != nil {
		out.Error("Invalid display field",
			fmt.Sprintf("constant value %v does not encode to hex: %s", value, err))
		return nil, false
	}
	family, size, err := typeFamilyOf(abiType)
	if err != nil {
		out.Error("Invalid display field", err.Error())
		return nil, false
	}
	return ConstantValue{TypeFamily: family, TypeSize: size, Value: value, Raw: encoded, raw: raw}, true
}

func fieldParam(
	fn abi.Function,
	known abi.PathSet,
	field model.ResolvedFieldDescription,
	value Value,
	enumIndex map[string]int,
	out output.Adder,
) (Param, bool) {
	switch field.Format {
	case model.FormatRaw, model.FormatTokenTicker, "":
		return ParamRaw{Value: value}, true

	case model.FormatAmount:
		return ParamAmount{Value: value}, true

	case model.FormatDuration:
		return ParamDuration{Value: value}, true

	case model.FormatTokenAmount:
		param := ParamTokenAmount{Value: value}
		if p, ok := field.Params.(model.ResolvedTokenAmountParameters); ok {
			if p.TokenPath != nil {
				token, ok := convertValue(fn, known, p.TokenPath, out)
				if !ok {
					return nil, false
				}
				param.Token = &token
			}
			if p.NativeCurrencyAddress != "" {
				param.NativeCurrencies = []string{strings.ToLower(p.NativeCurrencyAddress)}
			}
			param.Threshold = p.Threshold
			param.AboveThresholdMessage = p.Message
		}
		return param, true

	case model.FormatAddressName, model.FormatInteroperableAddressName:
		var p model.ResolvedAddressNameParameters
		if rp, ok := field.Params.(model.ResolvedAddressNameParameters); ok {
			p = rp
		}
		return ParamTrustedName{
			Value:   value,
			Types:   trustedNameTypes(p.Type),
			Sources: trustedNameSources(p.Type, p.Sources),
		}, true

	case model.FormatNftName:
		p, ok := field.Params.(model.ResolvedNftNameParameters)
		if !ok {
			out.Error("Invalid display field", "nftName field is missing its collection parameters")
			return nil, false
		}
		collection, ok := convertValue(fn, known, p.CollectionPath, out)
		if !ok {
			return nil, false
		}
		return ParamNFT{Value: value, Collection: collection}, true

	case model.FormatDate:
		p, ok := field.Params.(model.ResolvedDateParameters)
		if !ok {
			out.Error("Invalid display field", "date field is missing its encoding parameters")
			return nil, false
		}
		return ParamDatetime{Value: value, DateType: string(p.Encoding)}, true

	case model.FormatUnit:
		p, ok := field.Params.(model.ResolvedUnitParameters)
		if !ok {
			out.Error("Invalid display field", "unit field is missing its base parameters")
			return nil, false
		}
		return ParamUnit{Value: value, Base: p.Base, Decimals: p.Decimals, Prefix: p.Prefix}, true

	case model.FormatEnum:
		p, ok := field.Params.(model.ResolvedEnumParameters)
		if !ok {
			out.Error("Invalid display field", "enum field is missing its reference parameters")
			return nil, false
		}
		id, ok := enumIndex[enumName(p.Ref)]
		if !ok {
			out.Error("Invalid display field",
				fmt.Sprintf("enum %s is not declared in the descriptor metadata", p.Ref))
			return nil, false
		}
		return ParamEnum{Value: value, ID: id}, true

	case model.FormatCallData:
		param := ParamCalldata{Value: value}
		if p, ok := field.Params.(model.ResolvedCallDataParameters); ok {
			param.Selector = p.Selector
			if p.CalleePath != nil {
				callee, ok := convertValue(fn, known, p.CalleePath, out)
				if !ok {
					return nil, false
				}
				param.Callee = callee
			}
		}
		if param.Callee == nil {
			param.Callee = ContainerValue{Container: paths.ContainerTo}
		}
		return param, true

	default:
		out.Error("Invalid display field", fmt.Sprintf("unsupported field format %q", field.Format))
		return nil, false
	}
}

// trustedNameTypes maps a descriptor address type restriction to artifact
// trusted name types. An empty restriction allows every type.
func trustedNameTypes(t model.AddressNameType) []string {
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
		return []string{"wallet", "eoa", "smart_contract", "token", "collection"}
	}
}

// trustedNameSources maps descriptor name sources to artifact sources. When
// the descriptor names none, the defaults depend on the address type: name
// services for accounts, curated lists for contracts and assets.
func trustedNameSources(t model.AddressNameType, sources []model.AddressNameSource) []string {
	if len(sources) > 0 {
		out := make([]string, 0, len(sources))
		for _, s := range sources {
			switch s {
			case model.AddressSourceLocal:
				out = append(out, "local_address_book")
			case model.AddressSourceENS:
				out = append(out, "ens")
			default:
				out = append(out, string(s))
			}
		}
		return out
	}
	switch t {
	case model.AddressTypeWallet, model.AddressTypeEOA:
		return []string{"ens", "unstoppable_domain", "freename"}
	case model.AddressTypeContract, model.AddressTypeToken, model.AddressTypeNFT:
		return []string{"local_address_book", "crypto_asset_list"}
	default:
		return []string{"ens", "unstoppable_domain", "freename", "local_address_book", "crypto_asset_list"}
	}
}
