package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLabel_Valid(t *testing.T) {
	for _, s := range []string{"www", "a", "a1", "x-1", "example", "a1b2c3"} {
		lbl, err := NewLabel(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, lbl.String())
	}
}

func TestNewLabel_Invalid(t *testing.T) {
	cases := []string{
		"",                  // too short
		string(make([]byte, 64)), // too long
		"-abc",              // leading hyphen
		"abc-",              // trailing hyphen
		"ab_c",              // underscore not allowed
		"12345",             // all digits
	}
	for _, s := range cases {
		_, err := NewLabel(s)
		assert.Error(t, err, s)
	}
}

func TestLabelLower(t *testing.T) {
	lbl, err := NewLabel("WWW")
	require.NoError(t, err)
	assert.Equal(t, Label("www"), lbl.Lower())
}
