package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvidenceDetailsOrder(t *testing.T) {
	details := &EvidenceDetails{}
	details.Add("b", "2")
	details.Add("a", "1")
	details.Add("c", "3")

	all := details.All()
	assert.Equal(t, []Detail{{"b", "2"}, {"a", "1"}, {"c", "3"}}, all)
	assert.Equal(t, 3, details.Len())
}

func TestEvidenceDetailsAddUpdatesInPlace(t *testing.T) {
	details := &EvidenceDetails{}
	details.Add("state", "running")
	details.Add("type", "t3.micro")
	details.Add("state", "stopped")

	value, ok := details.Get("state")
	assert.True(t, ok)
	assert.Equal(t, "stopped", value)

	// Updating does not move the key.
	assert.Equal(t, "state", details.All()[0].Key)
	assert.Equal(t, 2, details.Len())
}

func TestEvidenceDetailsGetMissing(t *testing.T) {
	details := &EvidenceDetails{}
	_, ok := details.Get("absent")
	assert.False(t, ok)
}

func TestSecurityGroupIDs(t *testing.T) {
	instance := Instance{
		SecurityGroups: []SecurityGroup{
			{ID: "sg-1", Name: "web"},
			{ID: "sg-2", Name: "ssh"},
		},
	}
	assert.Equal(t, []string{"sg-1", "sg-2"}, instance.SecurityGroupIDs())

	empty := Instance{}
	assert.Empty(t, empty.SecurityGroupIDs())
}
