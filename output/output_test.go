package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffered(t *testing.T) {
	var b Buffered
	assert.False(t, b.HasErrors())

	b.Warning("formats.transfer", "missing intent")
	assert.False(t, b.HasErrors())

	b.Error("formats.transfer", "unknown path")
	assert.True(t, b.HasErrors())

	assert.Equal(t, []Message{
		{Title: "formats.transfer", Message: "missing intent", Level: LevelWarning},
		{Title: "formats.transfer", Message: "unknown path", Level: LevelError},
	}, b.Messages)
}

func TestTee(t *testing.T) {
	var a, b Buffered
	tee := Tee{&a, &b}
	tee.Error("x", "boom")
	assert.True(t, a.HasErrors())
	assert.True(t, b.HasErrors())
}
