package help

import (
	"io"
	"strings"
	"testing"

	"github.com/orangutan-lang/orangutan/pkg/stdlib"
)

func TestQUICKREFContainsVersion(t *testing.T) {
	if !strings.Contains(QUICKREF, Version) {
		t.Errorf("QUICKREF does not contain version string %s", Version)
	}
}

func TestQUICKREFListsTopics(t *testing.T) {
	for _, topic := range TopicList {
		if !strings.Contains(QUICKREF, topic) {
			t.Errorf("QUICKREF does not mention topic %q", topic)
		}
	}
}

func TestTopicListMatchesTopics(t *testing.T) {
	if len(TopicList) != len(Topics) {
		t.Errorf("TopicList has %d entries, Topics has %d", len(TopicList), len(Topics))
	}
	for _, name := range TopicList {
		if content, ok := Topics[name]; !ok || content == "" {
			t.Errorf("topic %q missing or empty", name)
		}
	}
}

func TestMatchTopic(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"syntax", "syntax"},
		{"diag", "diagnostics"},
		{"ex", "examples"},
		{"  Caps ", "caps"},
		{"mod", "modules"},
	}
	for _, tt := range tests {
		name, content, err := MatchTopic(tt.query)
		if err != nil {
			t.Errorf("MatchTopic(%q): %v", tt.query, err)
			continue
		}
		if name != tt.want || content != Topics[tt.want] {
			t.Errorf("MatchTopic(%q) = %q, want %q", tt.query, name, tt.want)
		}
	}
}

func TestMatchTopicErrors(t *testing.T) {
	for _, q := range []string{"nonexistent", "", "s"} {
		if _, _, err := MatchTopic(q); err == nil {
			t.Errorf("MatchTopic(%q): expected error", q)
		}
	}
	_, _, err := MatchTopic("s")
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguous error, got %v", err)
	}
}

func TestStdlibIndexCoversRegistry(t *testing.T) {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg, io.Discard)

	registered := strings.Join(reg.Names(), ",")
	indexed := strings.Join(StdlibNames(), ",")
	if registered != indexed {
		t.Errorf("index out of date:\nregistered: %s\nindexed:    %s", registered, indexed)
	}

	idx := StdlibIndex()
	if !strings.Contains(idx, "Total: 29 functions") {
		t.Errorf("unexpected total:\n%s", idx)
	}
}
