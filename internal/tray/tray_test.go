package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	title, tooltip := Label(true)
	assert.Equal(t, "Activity: on", title)
	assert.Contains(t, tooltip, "connected")

	title, tooltip = Label(false)
	assert.Equal(t, "Activity: off", title)
	assert.Contains(t, tooltip, "disabled")
}
