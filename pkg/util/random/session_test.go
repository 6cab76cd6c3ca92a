package random

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionIdIsUniqueAndPrefixed(t *testing.T) {
	a, b := NewSessionId(), NewSessionId()
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "cs_"))
	assert.Len(t, a, 35)
}
