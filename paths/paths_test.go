package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	for _, input := range []string{
		"#",
		"#.params.amount",
		"#.params.[0].token",
		"#.recipients.[].address",
		"#.items.[-1]",
		"#.items.[0:3]",
		"amount",
		"witness.outputs.[].token",
		"@.from",
		"@.to",
		"@.value",
		"$.metadata.constants.threshold",
		"$.display.definitions.spender",
	} {
		p, err := Parse(input)
		require.NoError(t, err, input)
		assert.Equal(t, input, p.String())
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"#.",
		"#..a",
		"@.gasPrice",
		"@to",
		"#.items.[",
		"#.items.[a]",
		"#.items.[0:b]",
		"$.metadata.enums.[0]",
		"#.foo[0]",
	} {
		_, err := Parse(input)
		assert.Error(t, err, input)
	}
}

func TestParseKinds(t *testing.T) {
	p, err := Parse("#.a.b")
	require.NoError(t, err)
	dp, ok := p.(DataPath)
	require.True(t, ok)
	assert.True(t, dp.Absolute)
	assert.Len(t, dp.Elements, 2)

	p, err = Parse("a.b")
	require.NoError(t, err)
	dp, ok = p.(DataPath)
	require.True(t, ok)
	assert.False(t, dp.Absolute)

	p, err = Parse("@.to")
	require.NoError(t, err)
	cp, ok := p.(ContainerPath)
	require.True(t, ok)
	assert.Equal(t, ContainerTo, cp.Field)

	p, err = Parse("$.metadata.constants.x")
	require.NoError(t, err)
	_, ok = p.(DescriptorPath)
	require.True(t, ok)
}

func TestConcat(t *testing.T) {
	prefix, err := ParseData("#.params.witness")
	require.NoError(t, err)
	child, err := ParseData("outputs.[].token")
	require.NoError(t, err)
	assert.Equal(t, "#.params.witness.outputs.[].token", Concat(prefix, child).String())

	// an absolute child ignores the prefix
	abs, err := ParseData("#.spender")
	require.NoError(t, err)
	assert.Equal(t, "#.spender", Concat(prefix, abs).String())
}

func TestStripPrefixInvariant(t *testing.T) {
	prefix, err := ParseData("#.recipients.[]")
	require.NoError(t, err)
	child, err := ParseData("address")
	require.NoError(t, err)

	stripped, err := StripPrefix(Concat(prefix, child), prefix)
	require.NoError(t, err)
	assert.Equal(t, child, stripped)
}

func TestStripPrefixMismatch(t *testing.T) {
	p, err := ParseData("#.a.b")
	require.NoError(t, err)
	prefix, err := ParseData("#.c")
	require.NoError(t, err)

	_, err = StripPrefix(p, prefix)
	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestToRelativeToAbsoluteRoundTrip(t *testing.T) {
	p, err := ParseData("#.params.[0].amount")
	require.NoError(t, err)
	assert.Equal(t, p, ToAbsolute(ToRelative(p)))

	rel, err := ParseData("params.amount")
	require.NoError(t, err)
	assert.Equal(t, rel, ToRelative(ToAbsolute(rel)))
}

func TestToSchemaPath(t *testing.T) {
	want := "#.items.[].name"
	for _, input := range []string{
		"#.items.[2].name",
		"#.items.[-1].name",
		"#.items.[0:3].name",
		"#.items.[].name",
	} {
		p, err := ParseData(input)
		require.NoError(t, err)
		normalized := ToSchemaPath(p)
		assert.Equal(t, want, normalized.String(), input)
		// idempotent
		assert.Equal(t, normalized, ToSchemaPath(normalized))
	}
}

func TestDescriptorPrefix(t *testing.T) {
	definitions := NewDescriptor("display", "definitions")
	ref, err := ParseDescriptor("$.display.definitions.spender")
	require.NoError(t, err)

	tail, err := StripDescriptorPrefix(ref, definitions)
	require.NoError(t, err)
	require.Len(t, tail.Elements, 1)
	assert.Equal(t, Field{Identifier: "spender"}, tail.Elements[0])

	other, err := ParseDescriptor("$.metadata.constants.spender")
	require.NoError(t, err)
	assert.False(t, HasDescriptorPrefix(other, definitions))
}
