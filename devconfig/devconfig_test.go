package devconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSourceValidation(t *testing.T) {
	src, err := NewSource("%%example%%", [][]string{{"example command1"}, {"example command2"}})
	require.NoError(t, err)
	require.Equal(t, "%%example%%", src.Marker())
	require.Equal(t, [][]string{{"example command1"}, {"example command2"}}, src.CommandsGroup())

	_, err = NewSource("%%example%", [][]string{{"x"}})
	require.ErrorIs(t, err, ErrInvalidMarker)

	_, err = NewSource("%%%%", [][]string{{"x"}})
	require.ErrorIs(t, err, ErrInvalidMarker)

	_, err = NewSource("fffffff%%", [][]string{{"x"}})
	require.ErrorIs(t, err, ErrInvalidMarker)

	_, err = NewSource("%%example%%", nil)
	require.ErrorIs(t, err, ErrEmptyCommandsGroup)
}

func TestSourceIsolatedFromCallerSlices(t *testing.T) {
	groups := [][]string{{"a", "b"}}
	src, err := NewSource("%%iso%%", groups)
	require.NoError(t, err)

	groups[0][0] = "mutated"
	require.Equal(t, "a", src.CommandsGroup()[0][0])

	out := src.CommandsGroup()
	out[0][1] = "mutated"
	require.Equal(t, "b", src.CommandsGroup()[0][1])
}

func TestConfigLookup(t *testing.T) {
	first, err := NewSource("%%example1%%", [][]string{{"example command"}})
	require.NoError(t, err)
	second, err := NewSource("%%example2%%", [][]string{{"example command1"}, {"example command2"}})
	require.NoError(t, err)

	cfg, err := New(first, second)
	require.NoError(t, err)
	require.Equal(t, []string{"%%example1%%", "%%example2%%"}, cfg.Markers())
	require.True(t, cfg.Has("%%example2%%"))
	require.Equal(t, [][]string{{"example command1"}, {"example command2"}}, cfg.CommandsGroup("%%example2%%"))
	require.Equal(t, []string{"example command1", "example command2"}, cfg.Lines("%%example2%%"))

	missing := cfg.CommandsGroup("%%unknown%%")
	require.NotNil(t, missing)
	require.Empty(t, missing)
	require.Empty(t, cfg.Lines("%%unknown%%"))
}

func TestConfigRejectsDuplicateMarkers(t *testing.T) {
	a, err := NewSource("%%example%%", [][]string{{"example command1"}})
	require.NoError(t, err)
	b, err := NewSource("%%example%%", [][]string{{"example command1"}, {"example command2"}})
	require.NoError(t, err)

	_, err = New(a, b)
	require.ErrorIs(t, err, ErrDuplicateMarker)
}
