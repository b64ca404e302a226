package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeywords(t *testing.T) {
	require.Equal(t, []string{"espresso", "machine", "descaling"},
		Keywords("my Espresso machine is descaling"))
	require.Empty(t, Keywords("is of an"))
	require.Empty(t, Keywords("ok no go"))
}

func TestRelevanceScore(t *testing.T) {
	keywords := []string{"espresso", "coffee"}

	require.Equal(t, 2, RelevanceScore("espressomachines", "all about coffee gear", keywords))
	require.Equal(t, 1, RelevanceScore("EspressoTalk", "", keywords))
	require.Equal(t, 0, RelevanceScore("woodworking", "saws and chisels", keywords))
	require.Equal(t, 0, RelevanceScore("anything", "anything", nil))
}
