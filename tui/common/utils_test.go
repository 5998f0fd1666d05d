package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinStatus(t *testing.T) {
	assert.Equal(t, "a · b", JoinStatus(0, "a", "", "  ", "b"))
	assert.Equal(t, "abc…", JoinStatus(4, "abcdef"))
	assert.Empty(t, JoinStatus(10))
}
