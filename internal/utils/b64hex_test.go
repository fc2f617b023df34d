package utils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestB64ToHex_Vectors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "single 0xff", in: "/w==", want: "ff"},
		{name: "three bytes", in: "AAEC", want: "000102"},
		{name: "two bytes", in: "q80=", want: "abcd"},
		{name: "trailing state one flush", in: "B", want: "04"},
		{name: "padding skipped everywhere", in: "/=w=", want: "ff"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := B64ToHex(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestB64ToHex_MatchesHexOfDecodedBytes(t *testing.T) {
	for n := 0; n < 64; n++ {
		raw := make([]byte, n)
		_, err := rand.Read(raw)
		require.NoError(t, err)

		got, err := B64ToHex(base64.StdEncoding.EncodeToString(raw))
		require.NoError(t, err)
		assert.Equal(t, hex.EncodeToString(raw), got, "length %d", n)
	}
}

func TestB64ToHex_RejectsForeignCharacters(t *testing.T) {
	_, err := B64ToHex("ab-c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid character")
}
