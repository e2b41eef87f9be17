package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"contact":    KindContact,
		" Contacts ": KindContact,
		"ENQUIRY":    KindEnquiry,
		"enquiries":  KindEnquiry,
		"newsletter": "",
		"":           "",
	}
	for in, want := range cases {
		got, ok := ParseKind(in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, want != "", ok, in)
	}
}

func TestStatusValidFor(t *testing.T) {
	assert.True(t, StatusNew.ValidFor(KindContact))
	assert.True(t, StatusConverted.ValidFor(KindContact))
	assert.False(t, StatusPending.ValidFor(KindContact))

	assert.True(t, StatusPending.ValidFor(KindEnquiry))
	assert.True(t, StatusInProgress.ValidFor(KindEnquiry))
	assert.False(t, StatusNew.ValidFor(KindEnquiry))

	assert.True(t, StatusClosed.ValidFor(KindContact))
	assert.True(t, StatusClosed.ValidFor(KindEnquiry))
	assert.False(t, StatusClosed.ValidFor(Kind("newsletter")))
}
