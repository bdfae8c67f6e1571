package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrompt(t *testing.T) {
	system, err := LoadPrompt("explain_system")
	require.NoError(t, err)
	assert.Contains(t, system, "No financial advice")
	assert.False(t, strings.ContainsAny(system, "{}"), "system prompt is an FString template")

	user, err := LoadPrompt("explain_user")
	require.NoError(t, err)
	assert.Contains(t, user, "{task}")
	assert.Contains(t, user, "{data}")

	_, err = LoadPrompt("missing")
	assert.Error(t, err)
}
