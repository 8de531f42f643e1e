package rule

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestOptionsApply(t *testing.T) {
	cases := []struct {
		name      string
		indent    int
		each      bool
		eachGroup bool
		in        [][]string
		want      [][]string
	}{
		{
			name:      "all options",
			indent:    4,
			each:      true,
			eachGroup: true,
			in:        [][]string{{"command1", "command2"}},
			want:      [][]string{{"    command1", "!", "    command2", "!"}},
		},
		{
			name:      "no options",
			indent:    0,
			each:      false,
			eachGroup: false,
			in:        [][]string{{"a", "b"}, {"c"}},
			want:      [][]string{{"a", "b"}, {"c"}},
		},
		{
			name:      "group filling only",
			indent:    0,
			each:      false,
			eachGroup: true,
			in:        [][]string{{"a", "b"}, {"c"}},
			want:      [][]string{{"a", "b", "!"}, {"c", "!"}},
		},
		{
			name:      "command filling only",
			indent:    0,
			each:      true,
			eachGroup: false,
			in:        [][]string{{"a", "b", "c"}, {"d"}},
			want:      [][]string{{"a", "!", "b", "!", "c"}, {"d"}},
		},
		{
			name:      "indent only",
			indent:    1,
			each:      false,
			eachGroup: false,
			in:        [][]string{{"a"}, {"b"}},
			want:      [][]string{{" a"}, {" b"}},
		},
		{
			name:      "empty group stays empty",
			indent:    2,
			each:      true,
			eachGroup: true,
			in:        [][]string{{}, {"a"}},
			want:      [][]string{{}, {"  a", "!"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := NewOptions(tc.indent, tc.each, tc.eachGroup)
			require.NoError(t, err)
			got := opts.Apply(tc.in, "!")
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("Apply mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOptionsApplyDoesNotModifyInput(t *testing.T) {
	opts, err := NewOptions(2, true, true)
	require.NoError(t, err)
	in := [][]string{{"a", "b"}}
	_ = opts.Apply(in, "!")
	require.Equal(t, [][]string{{"a", "b"}}, in)
}

func TestNewOptionsRejectsNegativeIndent(t *testing.T) {
	_, err := NewOptions(-1, false, false)
	require.ErrorIs(t, err, ErrInvalidOptions)
}
