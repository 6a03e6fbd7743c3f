package testutils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextAsserter_Diff(t *testing.T) {
	ta := NewTextAsserter(t)

	assert.Empty(t, ta.Diff("a\nb  \n\n", "a\nb"), "trailing whitespace and outer blank lines are ignored")

	diff := ta.Diff("a\nc", "a\nb")
	assert.Contains(t, diff, "-b")
	assert.Contains(t, diff, "+c")
}

func TestTextAsserter_Options(t *testing.T) {
	strict := NewTextAsserter(t).WithOptions(WithTrimSpace(false))
	assert.NotEmpty(t, strict.Diff("a\n", "a"))

	colored := NewTextAsserter(t).WithOptions(WithEnableColors(true))
	diff := colored.Diff("x", "y")
	assert.True(t, strings.Contains(diff, "\x1b["), "colored diff carries escape codes")
}
