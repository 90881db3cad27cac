package idgen

import (
	"strings"
	"testing"
)

func TestNew_PrefixedAndUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := string(CampID())
		if !strings.HasPrefix(id, "camp-") {
			t.Fatalf("id=%q missing prefix", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
	if !strings.HasPrefix(string(RegistrationID()), "reg-") || !strings.HasPrefix(string(CampDayID()), "day-") {
		t.Fatalf("unexpected prefixes")
	}
}
