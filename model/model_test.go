package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInputContract(t *testing.T) {
	doc := `{
		"context": {
			"contract": {
				"abi": [{"type": "function", "name": "transfer", "inputs": [
					{"name": "to", "type": "address"},
					{"name": "amount", "type": "uint256"}
				]}],
				"deployments": [{"chainId": 1, "address": "0xdac17f958d2ee523a2206206994597c13d831ec7"}]
			}
		},
		"metadata": {
			"owner": "Tether",
			"constants": {"max": "0xffffffffffffffff"}
		},
		"display": {
			"formats": {
				"transfer(address,uint256)": {
					"intent": "Send tokens",
					"fields": [
						{"path": "to", "label": "To", "format": "addressName", "params": {"type": "eoa"}},
						{"path": "amount", "label": "Amount", "format": "tokenAmount", "params": {"tokenPath": "@.to"}}
					]
				}
			}
		}
	}`
	d, err := ParseInput([]byte(doc))
	require.NoError(t, err)
	require.NotNil(t, d.Context.Contract)
	assert.Nil(t, d.Context.EIP712)
	assert.Len(t, d.Context.Contract.ABI.Entries, 1)
	assert.Equal(t, "Tether", d.Metadata.Owner)

	format := d.Display.Formats["transfer(address,uint256)"]
	require.Len(t, format.Fields, 2)

	to, ok := format.Fields[0].(InputFieldDescription)
	require.True(t, ok)
	assert.Equal(t, FormatAddressName, to.Format)
	addr, ok := to.Params.Value.(InputAddressNameParameters)
	require.True(t, ok)
	assert.Equal(t, AddressTypeEOA, addr.Type)

	amount, ok := format.Fields[1].(InputFieldDescription)
	require.True(t, ok)
	token, ok := amount.Params.Value.(InputTokenAmountParameters)
	require.True(t, ok)
	assert.Equal(t, "@.to", token.TokenPath)
}

func TestParseInputContextValidation(t *testing.T) {
	_, err := ParseInput([]byte(`{"context": {}, "metadata": {}, "display": {"formats": {}}}`))
	assert.Error(t, err)

	_, err = ParseInput([]byte(`{
		"context": {"contract": {"abi": []}, "eip712": {"schemas": []}},
		"metadata": {}, "display": {"formats": {}}
	}`))
	assert.Error(t, err)
}

func TestFieldUnionSniffing(t *testing.T) {
	var fields InputFields
	err := json.Unmarshal([]byte(`[
		{"path": "spender", "$ref": "$.display.definitions.spender"},
		{"path": "details", "fields": [{"path": "amount", "label": "Amount", "format": "raw"}]},
		{"path": "deadline", "label": "Deadline", "format": "date", "params": {"encoding": "timestamp"}}
	]`), &fields)
	require.NoError(t, err)
	require.Len(t, fields, 3)

	_, ok := fields[0].(InputReference)
	assert.True(t, ok)
	nested, ok := fields[1].(InputNestedFields)
	require.True(t, ok)
	require.Len(t, nested.Fields, 1)
	desc, ok := fields[2].(InputFieldDescription)
	require.True(t, ok)
	date, ok := desc.Params.Value.(InputDateParameters)
	require.True(t, ok)
	assert.Equal(t, DateEncodingTimestamp, date.Encoding)
}

func TestFieldUnionRejectsUnknownShape(t *testing.T) {
	var fields InputFields
	err := json.Unmarshal([]byte(`[{"path": "x"}]`), &fields)
	assert.Error(t, err)
}

func TestParamUnionPrecedence(t *testing.T) {
	// tokenPath wins over other present keys
	p, err := UnmarshalInputFieldParameters([]byte(`{"tokenPath": "#.token", "threshold": "0xff"}`))
	require.NoError(t, err)
	token, ok := p.(InputTokenAmountParameters)
	require.True(t, ok)
	assert.Equal(t, "#.token", token.TokenPath)

	p, err = UnmarshalInputFieldParameters([]byte(`{"$ref": "$.metadata.enums.interestRateMode"}`))
	require.NoError(t, err)
	enum, ok := p.(InputEnumParameters)
	require.True(t, ok)
	assert.Equal(t, "$.metadata.enums.interestRateMode", enum.Ref)

	p, err = UnmarshalInputFieldParameters([]byte(`{"selector": "0xa9059cbb", "calleePath": "#.target"}`))
	require.NoError(t, err)
	_, ok = p.(InputCallDataParameters)
	assert.True(t, ok)

	_, err = UnmarshalInputFieldParameters([]byte(`{"sources": ["ens"]}`))
	assert.Error(t, err)
}

func TestEnumRef(t *testing.T) {
	var m InputMetadata
	err := json.Unmarshal([]byte(`{
		"enums": {
			"rateMode": {"1": "stable", "2": "variable"},
			"remote": "https://example.com/enums.json"
		}
	}`), &m)
	require.NoError(t, err)
	assert.Equal(t, EnumDefinition{"1": "stable", "2": "variable"}, m.Enums["rateMode"].Values)
	assert.Equal(t, "https://example.com/enums.json", m.Enums["remote"].URL)
}

func TestIntent(t *testing.T) {
	var f InputFormat
	require.NoError(t, json.Unmarshal([]byte(`{"intent": "Send tokens", "fields": []}`), &f))
	assert.Equal(t, "Send tokens", f.Intent.Simple)

	require.NoError(t, json.Unmarshal([]byte(`{"intent": {"action": "Swap"}, "fields": []}`), &f))
	assert.Equal(t, map[string]string{"action": "Swap"}, f.Intent.Complex)
}
