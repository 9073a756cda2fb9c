package capabilities

import (
	"reflect"
	"testing"
)

func TestDefaultAllowsOnlyFSRead(t *testing.T) {
	p := Default()
	if !p.IsAllowed(FSRead) {
		t.Errorf("default policy denies %s", FSRead)
	}
	for _, c := range []string{FSWrite, HTTP, "unknown"} {
		if p.IsAllowed(c) {
			t.Errorf("default policy allows %s", c)
		}
	}
}

func TestFromSpecDenyOverridesAllow(t *testing.T) {
	p := FromSpec(Spec{Allow: []string{HTTP, FSWrite}, Deny: []string{FSWrite, FSRead}})
	if got, want := p.Allowed(), []string{HTTP}; !reflect.DeepEqual(got, want) {
		t.Errorf("Allowed() = %v, want %v", got, want)
	}
}

func TestAllowAllAndDenyAll(t *testing.T) {
	if !AllowAll().IsAllowed(HTTP) {
		t.Errorf("AllowAll denies http")
	}
	if got := AllowAll().Allowed(); !reflect.DeepEqual(got, Known) {
		t.Errorf("AllowAll().Allowed() = %v", got)
	}
	if DenyAll().IsAllowed(FSRead) {
		t.Errorf("DenyAll allows fs.read")
	}
	var nilPolicy *Policy
	if nilPolicy.IsAllowed(FSRead) {
		t.Errorf("nil policy allows fs.read")
	}
}

func TestIsKnown(t *testing.T) {
	if !IsKnown(HTTP) || IsKnown("sh.exec") {
		t.Errorf("IsKnown gave unexpected results")
	}
}
