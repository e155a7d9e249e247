package render

import (
	"strings"
	"testing"

	"github.com/stanza-dev/stanza/pkg/lockfile"
)

func TestToDOT(t *testing.T) {
	packages := []*lockfile.Package{
		{Name: "urllib3", Version: "2.2.1"},
		{Name: "requests", Version: "2.31.0", Requires: []lockfile.Dependency{
			{Name: "urllib3"},
			{Name: "pruned-elsewhere"},
		}},
		{Name: "urllib3", Version: "2.2.1"}, // merged closures may repeat
	}

	dot := ToDOT(packages)

	if !strings.HasPrefix(dot, "digraph deps {") {
		t.Errorf("DOT missing digraph header:\n%s", dot)
	}
	if !strings.Contains(dot, `"requests" [label="requests`) {
		t.Errorf("DOT missing requests node:\n%s", dot)
	}
	if !strings.Contains(dot, `"requests" -> "urllib3";`) {
		t.Errorf("DOT missing requirement edge:\n%s", dot)
	}

	// Duplicate closure entries collapse to one node.
	if got := strings.Count(dot, `"urllib3" [label=`); got != 1 {
		t.Errorf("urllib3 node count = %d, want 1", got)
	}

	// Edges to packages outside the closure are omitted.
	if strings.Contains(dot, "pruned-elsewhere") {
		t.Errorf("DOT contains edge to non-member:\n%s", dot)
	}
}
