package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotBlank(t *testing.T) {
	blank := "  \t "
	name := " Ann "

	assert.ErrorIs(t, NotBlank(""), ErrBlank)
	assert.ErrorIs(t, NotBlank("   "), ErrBlank)
	assert.ErrorIs(t, NotBlank(&blank), ErrBlank)
	assert.NoError(t, NotBlank("Ann"))
	assert.NoError(t, NotBlank(&name))
	assert.NoError(t, NotBlank((*string)(nil)))
}
