package genres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsClassical_MatchesOnlyClassical(t *testing.T) {
	assert.True(t, IsClassical([]string{"Classical"}))
	assert.True(t, IsClassical([]string{"House", "CLASSICAL"}))
	assert.False(t, IsClassical([]string{"Opera"}))
	assert.False(t, IsClassical([]string{"House", "Techno"}))
	assert.False(t, IsClassical(nil))
}
