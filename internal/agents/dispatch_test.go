package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldUseTools(t *testing.T) {
	cases := map[string]bool{
		"find the latest AI news":         true,
		"what is empathy":                 false,
		"":                                false,
		"   ":                             false,
		"Any GitHub issues about agents?": true,
		"LOOK UP satya's memo":            true,
		"show me a Video on leadership":   true,
		"how do I lead with purpose":      false,
	}
	for q, want := range cases {
		assert.Equal(t, want, ShouldUseTools(q), "question %q", q)
	}
}

func TestCustomDispatcher(t *testing.T) {
	d := NewDispatcher([]string{" Wikipedia ", ""})

	assert.True(t, d.ShouldUseTools("check wikipedia for this"))
	assert.False(t, d.ShouldUseTools("search the web"))
}
