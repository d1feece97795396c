package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedIsIndependentOfIterationOrder(t *testing.T) {
	reg := FromList([]Descriptor{
		{Name: "sms", Version: "1.0"},
		{Name: "alerts", Version: "2.1"},
		{Name: "mfa", Version: "0.3"},
		{Name: "blink", Version: "1.2"},
	})
	for range 10 {
		got := Sorted(reg)
		names := make([]string, len(got))
		for i, d := range got {
			names[i] = d.Name
		}
		assert.Equal(t, []string{"alerts", "blink", "mfa", "sms"}, names)
	}
	assert.Nil(t, Sorted(nil))
}

func TestSortedUsesDescriptorName(t *testing.T) {
	reg := Static{
		"a_key": {Name: "zulu"},
		"z_key": {Name: "alpha"},
		"m_key": {Name: "alpha", Version: "2"},
	}
	got := Sorted(reg)
	assert.Equal(t, []Descriptor{
		{Name: "alpha", Version: "2"},
		{Name: "alpha"},
		{Name: "zulu"},
	}, got)
}

func TestFind(t *testing.T) {
	reg := FromList([]Descriptor{{Name: "sms", Title: "SMS"}})

	d, ok := Find(reg, "sms")
	assert.True(t, ok)
	assert.Equal(t, "SMS", d.Title)

	_, ok = Find(reg, "nope")
	assert.False(t, ok)
	_, ok = Find(nil, "sms")
	assert.False(t, ok)
}
