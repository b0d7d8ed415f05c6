package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	assert.True(t, m.Enabled("a", 1))
	assert.True(t, m.Enabled("c", 1))
	assert.True(t, m.Enabled("e", 1))
	assert.False(t, m.Enabled("b", 1))
	assert.False(t, m.Enabled("d", 1))
	assert.False(t, m.Enabled("f", 1))
	assert.False(t, m.Enabled("missing", 1))
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,broken=x%")

	assert.True(t, m.Enabled("always", 1))
	assert.False(t, m.Enabled("never", 1))
	assert.False(t, m.Enabled("broken", 1))

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42), "rollout evaluation must be deterministic per user")
	}

	assert.False(t, m.Enabled("canary", 0), "percentage rollout requires a subject")
}

func TestEnabledFor_SubjectRollout(t *testing.T) {
	m := NewManager("public_api=50%")

	enabled := 0
	for _, name := range []string{"ada", "grace", "linus", "ken", "rob", "dennis", "barbara", "margaret", "alan", "edsger"} {
		if m.EnabledFor(PublicAPI, name) {
			enabled++
		}
		assert.Equal(t, m.EnabledFor(PublicAPI, name), m.EnabledFor(PublicAPI, name))
	}
	assert.Equal(t, 8, enabled)
	assert.True(t, m.EnabledFor(PublicAPI, "ada"))
	assert.False(t, m.EnabledFor(PublicAPI, "linus"))
}

func TestNilManager(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled(LivePreview, 1))
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off ")

	raw := m.Raw()
	assert.Len(t, raw, 3)
	assert.Equal(t, map[string]string{"x": "on", "y": "20%", "z": "off"}, raw)
	assert.Equal(t, []string{"x", "y", "z"}, m.Names())
	assert.Len(t, m.Snapshot(123), 3)
}
