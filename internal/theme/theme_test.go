package theme

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectHonorsExplicitModes(t *testing.T) {
	require.Equal(t, Dark, Detect("dark"))
	require.Equal(t, Light, Detect("light"))
}

func TestDetectFallsBackToProbe(t *testing.T) {
	// "auto" and unknown values both end up probing the terminal; the probe
	// result depends on the environment, but it must be one of the two modes.
	mode := Detect("auto")
	require.Contains(t, []Mode{Dark, Light}, mode)
	require.Equal(t, mode, Detect(""))
}

func TestPaletteForBothModes(t *testing.T) {
	dark := PaletteFor(Dark)
	light := PaletteFor(Light)
	require.NotEqual(t, dark.Added.GetBackground(), light.Added.GetBackground())
	require.NotEqual(t, dark.Removed.GetBackground(), light.Removed.GetBackground())
}
