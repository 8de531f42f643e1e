package rule

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeleteAction(t *testing.T) {
	action, err := BuildAction("Delete", "")
	require.NoError(t, err)
	require.Equal(t, MatchLiteral, action.Match())

	applicable := []string{"Command1", "Command2"}
	got, err := action.Do([]string{"Command1"}, applicable)
	require.NoError(t, err)
	require.Equal(t, []string{"Command2"}, got)
	require.Equal(t, []string{"Command1", "Command2"}, applicable, "input must not be modified")

	got, err = action.Do([]string{"Command"}, applicable)
	require.NoError(t, err)
	require.Equal(t, applicable, got, "literal match does not remove partial matches")
}

func TestDeleteActionRegex(t *testing.T) {
	action, err := BuildAction("Delete", MatchRegex)
	require.NoError(t, err)

	got, err := action.Do([]string{"^shutdown$", "vlan \\d+"}, []string{"shutdown", "no shutdown", "switchport access vlan 10"})
	require.NoError(t, err)
	require.Equal(t, []string{"no shutdown"}, got)

	_, err = action.Do([]string{"("}, []string{"x"})
	require.ErrorIs(t, err, ErrInvalidPattern)
}

func TestAddAction(t *testing.T) {
	action, err := BuildAction("Add", "")
	require.NoError(t, err)

	applicable := []string{"Command1"}
	conditional := []string{"Command2"}
	got, err := action.Do(conditional, applicable)
	require.NoError(t, err)
	require.Equal(t, []string{"Command1", "Command2"}, got)

	got[0] = "mutated"
	require.Equal(t, "Command1", applicable[0])
}

func TestBuildActionUnknown(t *testing.T) {
	_, err := BuildAction("Replace", "")
	require.ErrorIs(t, err, ErrUnknownAction)

	_, err = BuildAction("Delete", MatchMode("glob"))
	require.ErrorIs(t, err, ErrUnknownMatchMode)

	_, err = ParseMatchMode("glob")
	require.ErrorIs(t, err, ErrUnknownMatchMode)
}
