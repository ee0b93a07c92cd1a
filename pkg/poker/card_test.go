package poker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCardRoundTrip(t *testing.T) {
	c, err := ParseCard("Ah")
	require.NoError(t, err)
	require.Equal(t, Ace, c.Rank)
	require.Equal(t, Hearts, c.Suit)
	require.Equal(t, "Ah", c.Code())
}

func TestParseCardInvalid(t *testing.T) {
	_, err := ParseCard("Zz")
	require.Error(t, err)

	_, err = ParseCard("A")
	require.Error(t, err)
}

func TestDecodeBarcode(t *testing.T) {
	cases := []struct {
		barcode string
		want    string
	}{
		{"1010", "As"},
		{"2020", "2h"},
		{"3130", "Kc"},
		{"4090", "9d"},
	}
	for _, tc := range cases {
		got, err := DecodeBarcode(tc.barcode)
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}
}

func TestDecodeBarcodeRejectsMalformed(t *testing.T) {
	_, err := DecodeBarcode("101")
	require.Error(t, err)

	_, err = DecodeBarcode("5010")
	require.Error(t, err)

	_, err = DecodeBarcode("1000")
	require.Error(t, err)
}
