package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"700", "0700.HK"},
		{"0700", "0700.HK"},
		{"00700", "0700.HK"},
		{"0700.HK", "0700.HK"},
		{"01810", "1810.HK"},
		{"1810.HK", "1810.HK"},
		{"5", "0005.HK"},
		{"  700  ", "0700.HK"},
		{"9988", "9988.HK"},
		{"ABC", "ABC.HK"},
		{"ABC.HK", "ABC.HK"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTicker(tt.input))
		})
	}
}

func TestNormalizeTickerIdempotent(t *testing.T) {
	for _, input := range []string{"700", "0700.HK", "ABC", "01810"} {
		once := NormalizeTicker(input)
		assert.Equal(t, once, NormalizeTicker(once))
	}
}

func TestSinaCode(t *testing.T) {
	code, err := SinaCode("700")
	require.NoError(t, err)
	assert.Equal(t, "hk00700", code)

	code, err = SinaCode("0700.HK")
	require.NoError(t, err)
	assert.Equal(t, "hk00700", code)

	code, err = SinaCode("1810")
	require.NoError(t, err)
	assert.Equal(t, "hk01810", code)

	_, err = SinaCode("AAPL")
	assert.Error(t, err)
}

func TestSplitTickerInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"commas", "0700,0005,1810", []string{"0700", "0005", "1810"}},
		{"spaces", "0700 0005", []string{"0700", "0005"}},
		{"newlines", "0700\n0005\r\n1810", []string{"0700", "0005", "1810"}},
		{"mixed with empties", "0700,, 0005 ,\n", []string{"0700", "0005"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitTickerInput(tt.input))
		})
	}
}
