package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clear-signing/erc7730/model"
	"github.com/clear-signing/erc7730/output"
)

func resolveDoc(t *testing.T, doc string) (*model.ResolvedDescriptor, *output.Buffered) {
	t.Helper()
	d, err := model.ParseInput([]byte(doc))
	require.NoError(t, err)
	var out output.Buffered
	r := &Resolver{}
	return r.Resolve(context.Background(), d, &out), &out
}

const transferContext = `
	"context": {
		"contract": {
			"abi": [{"type": "function", "name": "transfer", "inputs": [
				{"name": "to", "type": "address"},
				{"name": "amount", "type": "uint256"}
			]}],
			"deployments": [{"chainId": 1, "address": "0xDAC17F958D2ee523a2206206994597C13D831ec7"}]
		}
	}`

func TestResolveSelectorNormalization(t *testing.T) {
	resolved, out := resolveDoc(t, `{`+transferContext+`,
		"metadata": {"owner": "Tether"},
		"display": {"formats": {
			"transfer(address to, uint256 amount)": {"fields": [
				{"path": "to", "label": "To", "format": "raw"}
			]}
		}}
	}`)
	require.NotNil(t, resolved, "%v", out.Messages)
	require.Contains(t, resolved.Display.Formats, "0xa9059cbb")

	// deployment addresses are lowercased
	assert.Equal(t, "0xdac17f958d2ee523a2206206994597c13d831ec7",
		resolved.Context.Contract.Deployments[0].Address)

	format := resolved.Display.Formats["0xa9059cbb"]
	require.Len(t, format.Fields, 1)
	field, ok := format.Fields[0].(model.ResolvedFieldDescription)
	require.True(t, ok)
	assert.Equal(t, "#.to", field.Path.String())
}

func TestResolveDuplicateFormatKey(t *testing.T) {
	resolved, out := resolveDoc(t, `{`+transferContext+`,
		"metadata": {},
		"display": {"formats": {
			"transfer(address,uint256)": {"fields": [{"path": "to", "label": "To"}]},
			"0xa9059cbb": {"fields": [{"path": "amount", "label": "Amount"}]}
		}}
	}`)
	assert.Nil(t, resolved)
	require.True(t, out.HasErrors())
	assert.Equal(t, "Duplicate format", out.Messages[len(out.Messages)-1].Title)
}

func TestResolveConstants(t *testing.T) {
	resolved, out := resolveDoc(t, `{`+transferContext+`,
		"metadata": {"constants": {
			"toLabel": "Recipient",
			"tokenPath": "@.to"
		}},
		"display": {"formats": {
			"transfer(address,uint256)": {"fields": [
				{"path": "amount", "label": "$.metadata.constants.toLabel", "format": "tokenAmount",
				 "params": {"tokenPath": "$.metadata.constants.tokenPath"}}
			]}
		}}
	}`)
	require.NotNil(t, resolved, "%v", out.Messages)
	format := resolved.Display.Formats["0xa9059cbb"]
	field := format.Fields[0].(model.ResolvedFieldDescription)
	assert.Equal(t, "Recipient", field.Label)
	params := field.Params.(model.ResolvedTokenAmountParameters)
	assert.Equal(t, "@.to", params.TokenPath.String())
}

func TestResolveUndefinedConstant(t *testing.T) {
	resolved, out := resolveDoc(t, `{`+transferContext+`,
		"metadata": {},
		"display": {"formats": {
			"transfer(address,uint256)": {"fields": [
				{"path": "amount", "label": "$.metadata.constants.missing"}
			]}
		}}
	}`)
	assert.Nil(t, resolved)
	assert.True(t, out.HasErrors())
}

func TestReferenceMergePrecedence(t *testing.T) {
	resolved, out := resolveDoc(t, `{`+transferContext+`,
		"metadata": {},
		"display": {
			"definitions": {
				"spender": {"label": "Spender", "format": "unit",
					"params": {"base": "USDC", "decimals": 2}}
			},
			"formats": {
				"transfer(address,uint256)": {"fields": [
					{"path": "amount", "$ref": "$.display.definitions.spender",
					 "params": {"decimals": 6}}
				]}
			}
		}
	}`)
	require.NotNil(t, resolved, "%v", out.Messages)
	field := resolved.Display.Formats["0xa9059cbb"].Fields[0].(model.ResolvedFieldDescription)
	assert.Equal(t, "Spender", field.Label)
	params := field.Params.(model.ResolvedUnitParameters)
	assert.Equal(t, "USDC", params.Base)
	require.NotNil(t, params.Decimals)
	assert.Equal(t, 6, *params.Decimals)
}

func TestReferenceMissingLabel(t *testing.T) {
	resolved, out := resolveDoc(t, `{`+transferContext+`,
		"metadata": {},
		"display": {
			"definitions": {"spender": {"format": "raw"}},
			"formats": {
				"transfer(address,uint256)": {"fields": [
					{"path": "to", "$ref": "$.display.definitions.spender"}
				]}
			}
		}
	}`)
	assert.Nil(t, resolved)
	require.True(t, out.HasErrors())
	assert.Equal(t, "Missing display field label", out.Messages[len(out.Messages)-1].Title)
}

func TestReferenceDangling(t *testing.T) {
	resolved, out := resolveDoc(t, `{`+transferContext+`,
		"metadata": {},
		"display": {
			"definitions": {"spender": {"label": "Spender", "format": "raw"}},
			"formats": {
				"transfer(address,uint256)": {"fields": [
					{"path": "to", "$ref": "$.display.definitions.recipient"}
				]}
			}
		}
	}`)
	assert.Nil(t, resolved)
	assert.True(t, out.HasErrors())
}

func TestReferenceRestrictedToDefinitions(t *testing.T) {
	resolved, out := resolveDoc(t, `{`+transferContext+`,
		"metadata": {},
		"display": {"formats": {
			"transfer(address,uint256)": {"fields": [
				{"path": "to", "$ref": "$.metadata.constants.spender"}
			]}
		}}
	}`)
	assert.Nil(t, resolved)
	assert.True(t, out.HasErrors())
}

func TestNestedFieldsFlattening(t *testing.T) {
	doc := `{
		"context": {
			"contract": {
				"abi": [{"type": "function", "name": "airdrop", "inputs": [
					{"name": "recipients", "type": "tuple[]", "components": [
						{"name": "address", "type": "address"},
						{"name": "amount", "type": "uint256"}
					]}
				]}],
				"deployments": [{"chainId": 1, "address": "0x0000000000000000000000000000000000000001"}]
			}
		},
		"metadata": {},
		"display": {"formats": {
			"airdrop((address,uint256)[])": {"fields": [
				{"path": "recipients.[]", "fields": [
					{"path": "address", "label": "To", "format": "raw"},
					{"path": "amount", "label": "Amount", "format": "raw"}
				]}
			]}
		}}
	}`
	resolved, out := resolveDoc(t, doc)
	require.NotNil(t, resolved, "%v", out.Messages)

	var format model.ResolvedFormat
	for _, f := range resolved.Display.Formats {
		format = f
	}
	// unlabeled group dissolves into its children, prefixed
	require.Len(t, format.Fields, 2)
	first := format.Fields[0].(model.ResolvedFieldDescription)
	assert.Equal(t, "#.recipients.[].address", first.Path.String())
	second := format.Fields[1].(model.ResolvedFieldDescription)
	assert.Equal(t, "#.recipients.[].amount", second.Path.String())
}

func TestNestedFieldsLabeledGroup(t *testing.T) {
	resolved, out := resolveDoc(t, `{`+transferContext+`,
		"metadata": {},
		"display": {"formats": {
			"transfer(address,uint256)": {"fields": [
				{"path": "to", "label": "Transfer", "fields": [
					{"path": "amount", "label": "Amount", "format": "raw"}
				]}
			]}
		}}
	}`)
	require.NotNil(t, resolved, "%v", out.Messages)
	group := resolved.Display.Formats["0xa9059cbb"].Fields[0].(model.ResolvedNestedFields)
	assert.Equal(t, "#.to", group.Path.String())
	assert.Equal(t, "Transfer", group.Label)
	require.Len(t, group.Fields, 1)
}

func TestNestedFieldsRejectsSliceAndContainer(t *testing.T) {
	resolved, _ := resolveDoc(t, `{`+transferContext+`,
		"metadata": {},
		"display": {"formats": {
			"transfer(address,uint256)": {"fields": [
				{"path": "items.[0:2]", "fields": [{"path": "x", "label": "X"}]}
			]}
		}}
	}`)
	assert.Nil(t, resolved)

	resolved, _ = resolveDoc(t, `{`+transferContext+`,
		"metadata": {},
		"display": {"formats": {
			"transfer(address,uint256)": {"fields": [
				{"path": "@.to", "fields": [{"path": "x", "label": "X"}]}
			]}
		}}
	}`)
	assert.Nil(t, resolved)
}

func TestEnumReferenceValidation(t *testing.T) {
	resolved, out := resolveDoc(t, `{`+transferContext+`,
		"metadata": {"enums": {"rateMode": {"1": "stable", "2": "variable"}}},
		"display": {"formats": {
			"transfer(address,uint256)": {"fields": [
				{"path": "amount", "label": "Mode", "format": "enum",
				 "params": {"$ref": "$.metadata.enums.rateMode"}}
			]}
		}}
	}`)
	require.NotNil(t, resolved, "%v", out.Messages)

	resolved, out = resolveDoc(t, `{`+transferContext+`,
		"metadata": {},
		"display": {"formats": {
			"transfer(address,uint256)": {"fields": [
				{"path": "amount", "label": "Mode", "format": "enum",
				 "params": {"$ref": "$.metadata.enums.missing"}}
			]}
		}}
	}`)
	assert.Nil(t, resolved)
	require.True(t, out.HasErrors())
	assert.Equal(t, "Undefined enum", out.Messages[len(out.Messages)-1].Title)
}

func TestMissingRequiredParams(t *testing.T) {
	resolved, out := resolveDoc(t, `{`+transferContext+`,
		"metadata": {},
		"display": {"formats": {
			"transfer(address,uint256)": {"fields": [
				{"path": "amount", "label": "Deadline", "format": "date"}
			]}
		}}
	}`)
	assert.Nil(t, resolved)
	require.True(t, out.HasErrors())
	assert.Equal(t, "Missing parameters", out.Messages[len(out.Messages)-1].Title)
}

func TestFieldValueConstant(t *testing.T) {
	resolved, out := resolveDoc(t, `{`+transferContext+`,
		"metadata": {"constants": {"vault": "0x000000000000000000000000000000000000dead"}},
		"display": {"formats": {
			"transfer(address,uint256)": {"fields": [
				{"value": "$.metadata.constants.vault", "label": "Vault", "format": "addressName",
				 "params": {"type": "contract"}}
			]}
		}}
	}`)
	require.NotNil(t, resolved, "%v", out.Messages)
	field := resolved.Display.Formats["0xa9059cbb"].Fields[0].(model.ResolvedFieldDescription)
	assert.Nil(t, field.Path)
	assert.Equal(t, "0x000000000000000000000000000000000000dead", field.Value)
}
