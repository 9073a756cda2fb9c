// Package capabilities implements the allow/deny policy that gates host
// builtins such as file and network access.
package capabilities

import "sort"

// Capability identifiers checked by the host builtins.
const (
	FSRead  = "fs.read"
	FSWrite = "fs.write"
	HTTP    = "http"
)

// Known lists every capability a policy can grant.
var Known = []string{FSRead, FSWrite, HTTP}

// Policy defines which capabilities are allowed for program execution.
type Policy struct {
	allowed map[string]bool
	all     bool
}

// Spec is the declarative form of a policy as it appears in a project
// manifest.
type Spec struct {
	Allow []string `yaml:"allow,omitempty" json:"allow,omitempty"`
	Deny  []string `yaml:"deny,omitempty" json:"deny,omitempty"`
}

// IsAllowed checks whether a capability is permitted by this policy.
// A nil policy allows nothing.
func (p *Policy) IsAllowed(cap string) bool {
	if p == nil {
		return false
	}
	return p.all || p.allowed[cap]
}

// Allowed returns the granted capabilities in sorted order.
func (p *Policy) Allowed() []string {
	if p == nil {
		return nil
	}
	if p.all {
		return append([]string(nil), Known...)
	}
	out := make([]string, 0, len(p.allowed))
	for c := range p.allowed {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Default permits reading files and nothing else.
func Default() *Policy {
	return &Policy{allowed: map[string]bool{FSRead: true}}
}

// FromSpec builds a policy on top of Default. Deny overrides allow, so a
// spec may also revoke fs.read.
func FromSpec(s Spec) *Policy {
	p := Default()
	for _, c := range s.Allow {
		p.allowed[c] = true
	}
	for _, c := range s.Deny {
		delete(p.allowed, c)
	}
	return p
}

// IsKnown reports whether c names a capability the runtime checks.
func IsKnown(c string) bool {
	for _, k := range Known {
		if k == c {
			return true
		}
	}
	return false
}

// AllowAll returns a policy that permits all capabilities. Used for --unsafe-allow-all.
func AllowAll() *Policy {
	return &Policy{all: true}
}

// DenyAll returns a policy that denies all capabilities.
func DenyAll() *Policy {
	return &Policy{allowed: make(map[string]bool)}
}
