package ui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgressBar(t *testing.T) {
	require.Equal(t, "[----------]", ProgressBar(0, 100, 10))
	require.Equal(t, "[#####-----]", ProgressBar(50, 100, 10))
	require.Equal(t, "[##########]", ProgressBar(500, 100, 10))
	require.Equal(t, "[---]", ProgressBar(-4, 0, 1))
}

func TestXPTextSign(t *testing.T) {
	require.Contains(t, XPText(20), "+20 XP")
	require.Contains(t, XPText(-10), "-10 XP")
	require.Contains(t, XPText(0), "0 XP")
}
