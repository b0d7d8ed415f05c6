// Package featureflags evaluates FEATURE_FLAGS rollout settings.
package featureflags

import (
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

const (
	// PublicAPI exposes GET /api/u/:username. Rolled out per viewed username.
	PublicAPI = "public_api"
	// LivePreview enables the dashboard's client-side preview panel. Rolled out per user id.
	LivePreview = "live_preview"
)

// rule is one parsed flag value. percent is -1 for an unparseable value,
// which never enables the flag.
type rule struct {
	raw     string
	percent int
}

func parseRule(value string) rule {
	r := rule{raw: value, percent: -1}
	switch value {
	case "on", "true", "1":
		r.percent = 100
	case "off", "false", "0":
		r.percent = 0
	default:
		if digits, ok := strings.CutSuffix(value, "%"); ok {
			if pct, err := strconv.Atoi(digits); err == nil {
				r.percent = min(max(pct, 0), 100)
			}
		}
	}
	return r
}

func (r rule) allows(name, subject string) bool {
	switch {
	case r.percent <= 0:
		return false
	case r.percent >= 100:
		return true
	case subject == "":
		return false
	default:
		return rolloutBucket(name, subject) < r.percent
	}
}

// Manager holds flags parsed from a comma-separated key=value list such as
// "public_api=on,live_preview=25%". Values are on/off (also true/false, 1/0)
// or an N% rollout bucketed deterministically by subject.
type Manager struct {
	rules map[string]rule
}

// NewManager parses raw. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		rules[key] = parseRule(value)
	}
	return &Manager{rules: rules}
}

// Enabled evaluates name for a user. Percentage rollouts need a non-zero userID.
func (m *Manager) Enabled(name string, userID uint) bool {
	subject := ""
	if userID != 0 {
		subject = strconv.FormatUint(uint64(userID), 10)
	}
	return m.EnabledFor(name, subject)
}

// EnabledFor evaluates name against an arbitrary rollout subject, for example
// the username of a viewed profile.
func (m *Manager) EnabledFor(name, subject string) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	return ok && r.allows(name, subject)
}

// Raw returns the configured values keyed by flag name.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.rules))
	for name, r := range m.rules {
		out[name] = r.raw
	}
	return out
}

func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.rules))
	for name := range m.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns every flag evaluated for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.rules))
	for _, name := range m.Names() {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name, subject string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + subject))
	return int(h.Sum32() % 100)
}
