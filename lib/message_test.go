package lib

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerificationBuffer(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		message  Message
		expected string
	}{
		{
			name:   "post",
			detail: "fields are newline joined in a fixed order",
			message: Message{
				Chain:    ChainETH,
				Sender:   "0xabc",
				Type:     MessagePost,
				ItemHash: "deadbeef",
			},
			expected: "ETH\n0xabc\nPOST\ndeadbeef",
		},
		{
			name:   "empty hash",
			detail: "an empty item hash still produces the trailing separator",
			message: Message{
				Chain:  ChainNULS2,
				Sender: "NULSd6Hg",
				Type:   MessageAggregate,
			},
			expected: "NULS2\nNULSd6Hg\nAGGREGATE\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, string(test.message.VerificationBuffer()))
		})
	}
}

func TestNewMessage(t *testing.T) {
	before := UnixSeconds(time.Now())
	// create a message
	m := NewMessage(ChainSOL, DefaultChannel, "addr", MessageStore)
	// validate the fields
	require.Equal(t, ChainSOL, m.Chain)
	require.Equal(t, MessageStore, m.Type)
	require.False(t, m.IsSigned())
	require.GreaterOrEqual(t, m.Time, before)
	// signing is observable
	m.Signature = "sig"
	require.True(t, m.IsSigned())
}

func TestUnixSeconds(t *testing.T) {
	require.Equal(t, 1.5, UnixSeconds(time.Unix(1, 500_000_000)))
}
