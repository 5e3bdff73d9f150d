package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"$100", 100},
		{"100", 100},
		{"$1,250.50", 1250.50},
		{" $45.00 ", 45},
		{"0", 0},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "$", "abc", "$12x"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestNormalizeStripsDollarPrefix(t *testing.T) {
	got, err := Normalize("$250")
	require.NoError(t, err)
	assert.Equal(t, "250.00", got)

	// Normalizing an already-normalized value must not change it.
	again, err := Normalize(got)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$100.00", Format(100))
	assert.Equal(t, "$1250.50", Format(1250.5))
}
