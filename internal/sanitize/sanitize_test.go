package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_LowercasesAndTrims(t *testing.T) {
	assert.Equal(t, "test artist", Value("Test Artist"))
}

func TestValue_StripsDiacritics(t *testing.T) {
	assert.Equal(t, Value("Sigur Ros"), Value("Sigur Rós"))
}

func TestValue_DropsPunctuation(t *testing.T) {
	assert.Equal(t, Value("artists"), Value("Artist's"))
}

func TestValue_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "house techno", Value("  House   Techno  "))
}
