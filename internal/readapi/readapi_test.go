package readapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeOrEmpty_PassesThroughBlank(t *testing.T) {
	assert.Equal(t, "", sanitizeOrEmpty(""))
}

func TestSanitizeOrEmpty_FoldsCaseAndPunctuation(t *testing.T) {
	assert.Equal(t, "mumford sons", sanitizeOrEmpty("Mumford & Sons"))
}
