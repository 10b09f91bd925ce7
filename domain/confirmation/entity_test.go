package confirmation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecipients(t *testing.T) {
	tests := []struct {
		name        string
		requestedBy string
		peers       []string
		want        PeerSet
	}{
		{"drops requester", "u1", []string{"u1"}, PeerSet{}},
		{"dedupes in order", "u1", []string{"u3", "u2", "u3", "u1"}, PeerSet{"u3", "u2"}},
		{"drops blanks", "u1", []string{"", " ", "u2"}, PeerSet{"u2"}},
		{"nil input", "u1", nil, PeerSet{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recipients(tt.requestedBy, tt.peers))
		})
	}
}

func TestAwaitsResponseFrom(t *testing.T) {
	c := Confirmation{
		Status:      StatusPending,
		SentTo:      PeerSet{"u2", "u3", "u4"},
		ConfirmedBy: PeerSet{"u3"},
		DeniedBy:    PeerSet{"u4"},
	}

	assert.True(t, c.AwaitsResponseFrom("u2"))
	assert.False(t, c.AwaitsResponseFrom("u3"))
	assert.False(t, c.AwaitsResponseFrom("u4"))
	assert.False(t, c.AwaitsResponseFrom("u5"))

	c.Status = StatusVerified
	assert.False(t, c.AwaitsResponseFrom("u2"))
}

func TestPeerSetWith(t *testing.T) {
	base := PeerSet{"u2"}
	got := base.With("u3")

	assert.Equal(t, PeerSet{"u2", "u3"}, got)
	assert.Equal(t, PeerSet{"u2"}, base, "original must not change")
	assert.Equal(t, PeerSet{"u2", "u3"}, got.With("u2"))
}
