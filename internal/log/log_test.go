package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(nil)
		SetLevel(LevelInfo)
	})

	SetLevel(ParseLevel("error"))
	assert.False(t, Enabled(LevelDebug))
	assert.False(t, Enabled(LevelInfo))
	assert.True(t, Enabled(LevelError))
	Info("hidden")
	Error("shown", errors.New("boom"), "id", 7)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "err=boom")
	assert.Contains(t, buf.String(), "id=7")

	SetLevel(ParseLevel(" Debug "))
	assert.True(t, Enabled(LevelDebug))
	Debug("odd", "key")
	assert.Contains(t, buf.String(), "msg=odd")
	assert.NotContains(t, buf.String(), "BADKEY")

	assert.Equal(t, LevelInfo, ParseLevel("loud"))
}
