package numparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1'234.56", "1234.56"},
		{"12.30", "12.3"},
		{"0.05", "0.05"},
		{"1'000'000.00", "1000000"},
		{"'1234.56", "1234.56"},
		{"999", "999"},
		{"  45.10  ", "45.1"},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		require.True(t, got.Valid, "input: %s", tt.input)
		assert.Equal(t, tt.want, got.Decimal.String(), "input: %s", tt.input)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, input := range []string{"", "   ", "\t"} {
		got, err := Parse(input)
		require.NoError(t, err)
		assert.False(t, got.Valid, "input: %q", input)
	}
}

func TestParse_Malformed(t *testing.T) {
	badInputs := []string{
		"12.34.56",
		"-5.00",
		"+5.00",
		"1,234.56",
		"abc",
		"12.",
		".5",
		"1e3",
	}
	for _, input := range badInputs {
		_, err := Parse(input)
		require.Error(t, err, "input: %q", input)
		assert.ErrorIs(t, err, ErrMalformed)
	}
}
