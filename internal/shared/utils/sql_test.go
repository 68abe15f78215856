package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%Ann Lee%", ContainsPattern("Ann Lee"))
	assert.Equal(t, `%50\% off%`, ContainsPattern("50% off"))
	assert.Equal(t, `%a\_b%`, ContainsPattern("a_b"))
	assert.Equal(t, `%C:\\dir%`, ContainsPattern(`C:\dir`))
}

func TestWhere_NumbersPlaceholders(t *testing.T) {
	var w Where
	assert.Equal(t, "TRUE", w.SQL())

	w.Add("status = $%d", "planned")
	w.Add(`(name ILIKE $%d ESCAPE '\' OR code ILIKE $%[1]d ESCAPE '\')`, ContainsPattern("x"))

	assert.Equal(t, `status = $1 AND (name ILIKE $2 ESCAPE '\' OR code ILIKE $2 ESCAPE '\')`, w.SQL())
	assert.Equal(t, []any{"planned", "%x%"}, w.Args())
}
