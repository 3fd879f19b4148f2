package eip712

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clear-signing/erc7730/model"
	"github.com/clear-signing/erc7730/output"
	"github.com/clear-signing/erc7730/resolve"
)

func convertDoc(t *testing.T, doc string) ([]Descriptor, *output.Buffered) {
	t.Helper()
	d, err := model.ParseInput([]byte(doc))
	require.NoError(t, err)
	var out output.Buffered
	r := &resolve.Resolver{}
	resolved := r.Resolve(context.Background(), d, &out)
	require.NotNil(t, resolved, "%v", out.Messages)
	return Convert(resolved, &out), &out
}

const permitDoc = `{
	"context": {"eip712": {
		"domain": {"name": "Permit2", "version": "1"},
		"schemas": [{
			"primaryType": "PermitSingle",
			"types": {
				"PermitSingle": [
					{"name": "details", "type": "PermitDetails"},
					{"name": "spender", "type": "address"},
					{"name": "sigDeadline", "type": "uint256"}
				],
				"PermitDetails": [
					{"name": "token", "type": "address"},
					{"name": "amount", "type": "uint160"}
				]
			}
		}],
		"deployments": [
			{"chainId": 137, "address": "0x000000000022D473030F116dDEE9F6B43aC78BA3"},
			{"chainId": 1, "address": "0x000000000022D473030F116dDEE9F6B43aC78BA3"}
		]
	}},
	"metadata": {"owner": "Uniswap"},
	"display": {"formats": {
		"PermitSingle": {
			"intent": "Approve spending",
			"fields": [
				{"path": "details.amount", "label": "Amount", "format": "tokenAmount",
				 "params": {"tokenPath": "details.token"}},
				{"path": "spender", "label": "Spender", "format": "addressName",
				 "params": {"type": "contract"}},
				{"path": "sigDeadline", "label": "Deadline", "format": "date",
				 "params": {"encoding": "timestamp"}}
			]
		}
	}}
}`

func TestConvertPermit(t *testing.T) {
	artifacts, out := convertDoc(t, permitDoc)
	require.False(t, out.HasErrors(), "%v", out.Messages)
	require.Len(t, artifacts, 2)

	// artifacts are ordered by chain id
	assert.Equal(t, int64(1), artifacts[0].ChainID)
	assert.Equal(t, "ethereum", artifacts[0].BlockchainName)
	assert.Equal(t, int64(137), artifacts[1].ChainID)
	assert.Equal(t, "polygon", artifacts[1].BlockchainName)

	a := artifacts[0]
	assert.Equal(t, "Permit2", a.Name)
	require.Len(t, a.Contracts, 1)
	contract := a.Contracts[0]
	assert.Equal(t, "0x000000000022d473030f116ddee9f6b43ac78ba3", contract.Address)
	assert.Equal(t, "Uniswap", contract.ContractName)

	require.Len(t, contract.Messages, 1)
	message := contract.Messages[0]
	assert.Equal(t, "Approve spending", message.Mapper.Label)

	// the reconstructed domain carries the chain binding members
	domain := message.Schema["EIP712Domain"]
	require.Len(t, domain, 4)
	assert.Equal(t, "name", domain[0].Name)
	assert.Equal(t, "version", domain[1].Name)
	assert.Equal(t, "chainId", domain[2].Name)
	assert.Equal(t, "verifyingContract", domain[3].Name)
	require.Contains(t, message.Schema, "PermitDetails")

	require.Len(t, message.Mapper.Fields, 3)

	amount := message.Mapper.Fields[0]
	assert.Equal(t, "details.amount", amount.Path)
	assert.Equal(t, FormatAmount, amount.Format)
	assert.Equal(t, "details.token", amount.AssetPath)

	spender := message.Mapper.Fields[1]
	assert.Equal(t, FormatTrustedName, spender.Format)
	assert.Equal(t, []string{"smart_contract"}, spender.NameTypes)
	assert.Equal(t, []string{"crypto_asset_list"}, spender.NameSources)

	deadline := message.Mapper.Fields[2]
	assert.Equal(t, "sigDeadline", deadline.Path)
	assert.Equal(t, FormatDatetime, deadline.Format)
}

func TestConvertEncodeTypeFormatKey(t *testing.T) {
	doc := `{
		"context": {"eip712": {
			"domain": {"name": "Exchange", "version": "2"},
			"schemas": [],
			"deployments": [{"chainId": 1, "address": "0x0000000000000000000000000000000000000001"}]
		}},
		"metadata": {"owner": "Exchange"},
		"display": {"formats": {
			"Order(address maker,uint256 amount)": {"fields": [
				{"path": "maker", "label": "Maker", "format": "raw"}
			]}
		}}
	}`
	artifacts, out := convertDoc(t, doc)
	require.False(t, out.HasErrors(), "%v", out.Messages)
	require.Len(t, artifacts, 1)

	message := artifacts[0].Contracts[0].Messages[0]
	// no intent: the primary type is the mapper label
	assert.Equal(t, "Order", message.Mapper.Label)
	require.Contains(t, message.Schema, "Order")
	require.Len(t, message.Schema["Order"], 2)
	assert.Equal(t, "maker", message.Schema["Order"][0].Name)
}

func TestConvertVerifyingContractToken(t *testing.T) {
	doc := `{
		"context": {"eip712": {
			"domain": {"name": "USDC", "version": "2"},
			"schemas": [],
			"deployments": [{"chainId": 1, "address": "0x0000000000000000000000000000000000000002"}]
		}},
		"metadata": {"owner": "Circle"},
		"display": {"formats": {
			"Permit(address spender,uint256 value)": {"fields": [
				{"path": "value", "label": "Amount", "format": "tokenAmount",
				 "params": {"tokenPath": "@.to"}}
			]}
		}}
	}`
	artifacts, out := convertDoc(t, doc)
	require.False(t, out.HasErrors(), "%v", out.Messages)
	require.Len(t, artifacts, 1)

	// "@.to" means the verifying contract itself: no asset path in the output
	field := artifacts[0].Contracts[0].Messages[0].Mapper.Fields[0]
	assert.Equal(t, FormatAmount, field.Format)
	assert.Empty(t, field.AssetPath)
}

func TestConvertTokenPathAcrossArrayFallsBackToRaw(t *testing.T) {
	doc := `{
		"context": {"eip712": {
			"domain": {"name": "Permit2", "version": "1"},
			"schemas": [{
				"primaryType": "PermitBatch",
				"types": {
					"PermitBatch": [
						{"name": "details", "type": "PermitDetails[]"},
						{"name": "spender", "type": "address"}
					],
					"PermitDetails": [
						{"name": "token", "type": "address"},
						{"name": "amount", "type": "uint160"}
					]
				}
			}],
			"deployments": [{"chainId": 1, "address": "0x000000000022D473030F116dDEE9F6B43aC78BA3"}]
		}},
		"metadata": {"owner": "Uniswap"},
		"display": {"formats": {
			"PermitBatch": {"fields": [
				{"path": "details.[].amount", "label": "Amount", "format": "tokenAmount",
				 "params": {"tokenPath": "details.[].token"}}
			]}
		}}
	}`
	artifacts, out := convertDoc(t, doc)
	require.Len(t, artifacts, 1)
	assert.False(t, out.HasErrors(), "%v", out.Messages)

	// the token cannot be linked across the array: the amount displays raw
	field := artifacts[0].Contracts[0].Messages[0].Mapper.Fields[0]
	assert.Equal(t, "details.[].amount", field.Path)
	assert.Equal(t, FormatRaw, field.Format)
	assert.Empty(t, field.AssetPath)

	warned := false
	for _, m := range out.Messages {
		if m.Level == output.LevelWarning && m.Title == "Unsupported token path" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestConvertMissingDomainName(t *testing.T) {
	doc := `{
		"context": {"eip712": {
			"domain": {"version": "1"},
			"schemas": [],
			"deployments": [{"chainId": 1, "address": "0x0000000000000000000000000000000000000003"}]
		}},
		"metadata": {"owner": "Someone"},
		"display": {"formats": {
			"Order(address maker)": {"fields": [{"path": "maker", "label": "Maker", "format": "raw"}]}
		}}
	}`
	artifacts, out := convertDoc(t, doc)
	assert.Nil(t, artifacts)
	require.True(t, out.HasErrors())
	assert.Equal(t, "Missing domain name", out.Messages[len(out.Messages)-1].Title)
}

func TestConvertMissingVersionWarns(t *testing.T) {
	doc := `{
		"context": {"eip712": {
			"domain": {"name": "Exchange"},
			"schemas": [],
			"deployments": [{"chainId": 1, "address": "0x0000000000000000000000000000000000000004"}]
		}},
		"metadata": {"owner": "Exchange"},
		"display": {"formats": {
			"Order(address maker)": {"fields": [{"path": "maker", "label": "Maker", "format": "raw"}]}
		}}
	}`
	artifacts, out := convertDoc(t, doc)
	require.Len(t, artifacts, 1)
	assert.False(t, out.HasErrors())

	warned := false
	for _, m := range out.Messages {
		if m.Level == output.LevelWarning && m.Title == "Missing domain version" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestConvertConstantValueRejected(t *testing.T) {
	doc := `{
		"context": {"eip712": {
			"domain": {"name": "Exchange", "version": "1"},
			"schemas": [],
			"deployments": [{"chainId": 1, "address": "0x0000000000000000000000000000000000000005"}]
		}},
		"metadata": {"owner": "Exchange"},
		"display": {"formats": {
			"Order(address maker)": {"fields": [
				{"value": "fixed", "label": "Kind", "format": "raw"}
			]}
		}}
	}`
	artifacts, out := convertDoc(t, doc)
	assert.Nil(t, artifacts)
	require.True(t, out.HasErrors())
	assert.Equal(t, "Constant values not supported", out.Messages[len(out.Messages)-1].Title)
}
