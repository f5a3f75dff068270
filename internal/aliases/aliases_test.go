package aliases

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	table := New(map[string]string{
		"müller":         "M.",
		" Max Mustermann ": " Max ",
	})

	cases := []struct {
		raw      string
		expected string
	}{
		{raw: "Müller", expected: "M."},
		{raw: "MÜLLER", expected: "M."},
		{raw: "müller", expected: "M."},
		{raw: "max mustermann", expected: "Max"},
		{raw: "Unknown", expected: "Unknown"},
		{raw: "", expected: ""},
	}
	for _, c := range cases {
		require.Equal(t, c.expected, table.Resolve(c.raw), c.raw)
	}
}

func TestZeroTableIsIdentity(t *testing.T) {
	var table Table
	require.Equal(t, "Anna", table.Resolve("Anna"))
	require.False(t, table.Has("Anna"))
	require.Equal(t, 0, table.Len())
	require.Empty(t, table.Entries())
}

func TestNewDoesNotRetainInput(t *testing.T) {
	configured := map[string]string{"anna": "A."}
	table := New(configured)
	configured["anna"] = "changed"
	configured["ben"] = "B."

	require.Equal(t, "A.", table.Resolve("Anna"))
	require.Equal(t, "Ben", table.Resolve("Ben"))
}

func TestEntriesSorted(t *testing.T) {
	table := New(map[string]string{"Zoe": "Z.", "anna": "A."})
	require.Equal(t, []Entry{
		{Raw: "anna", Display: "A."},
		{Raw: "zoe", Display: "Z."},
	}, table.Entries())
}

func TestSuggest(t *testing.T) {
	table := New(map[string]string{
		"maximilian mustermann": "Max",
		"anna schmidt":          "Anna",
	})

	key, score, ok := table.Suggest("Maximilian Musterman")
	require.True(t, ok)
	require.Equal(t, "maximilian mustermann", key)
	require.GreaterOrEqual(t, score, SuggestThreshold)

	_, _, ok = table.Suggest("Anna Schmidt")
	require.False(t, ok, "names with an alias need no suggestion")

	_, _, ok = table.Suggest("Zacharias")
	require.False(t, ok)

	_, _, ok = table.Suggest("")
	require.False(t, ok)
}
