package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{in: 150075, want: "R$ 1.500,75"},
		{in: 0, want: "R$ 0,00"},
		{in: 5, want: "R$ 0,05"},
		{in: 99900, want: "R$ 999,00"},
		{in: 123456789, want: "R$ 1.234.567,89"},
		{in: -2500, want: "-R$ 25,00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBRL(tt.in), "FormatBRL(%d)", tt.in)
	}
}

func TestParseBRL(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{in: "R$ 1.500,75", want: 150075},
		{in: "1500,75", want: 150075},
		{in: "R$ 10,00", want: 1000},
		{in: "1.000", want: 100000},
		{in: "0,5", want: 50},
		{in: "-R$ 25,00", want: -2500},
	}

	for _, tt := range tests {
		got, err := ParseBRL(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseBRLRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "R$", "abc", "1,234", "1,2,3", "1e3", "R$ 0,5e1", "1E2", "+5", "--5", "0x10", ",5"} {
		_, err := ParseBRL(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestBRLRoundTrip(t *testing.T) {
	for _, v := range []int64{150075, 1, 100, 333, 1000000, 98765432} {
		got, err := ParseBRL(FormatBRL(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}
