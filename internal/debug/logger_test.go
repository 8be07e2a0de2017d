package debug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitWriter(t *testing.T) {
	defer Init(false)

	var buf bytes.Buffer
	InitWriter(&buf, false)
	Debug("hidden")
	Warn("shown", "k", 1)
	assert.False(t, Enabled())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "component=dwq")

	buf.Reset()
	InitWriter(&buf, true)
	Debug("visible", "sql", "SELECT 1")
	assert.True(t, Enabled())
	assert.Contains(t, buf.String(), `sql="SELECT 1"`)
}
