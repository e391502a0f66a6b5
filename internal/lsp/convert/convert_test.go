package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripUpOnePrefix_Present(t *testing.T) {
	assert.Equal(t, "src/main.ion", StripUpOnePrefix("../src/main.ion"))
}

func TestStripUpOnePrefix_Absent(t *testing.T) {
	assert.Equal(t, "src/main.ion", StripUpOnePrefix("src/main.ion"))
}
