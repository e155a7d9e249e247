package lockfile

import (
	"testing"

	"github.com/Masterminds/semver/v3"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"requests", "requests"},
		{"Requests", "requests"},
		{"typing_extensions", "typing-extensions"},
		{"  Flask-SQLAlchemy ", "flask-sqlalchemy"},
		{"ruamel.yaml", "ruamel-yaml"},
		{"backports.zoneinfo_extra", "backports-zoneinfo-extra"},
		{"weird__--..name", "weird-name"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIndex_Lookup(t *testing.T) {
	ix := NewIndex([]*Package{
		{Name: "Typing_Extensions", Version: "4.9.0"},
		{Name: "requests", Version: "2.31.0"},
	})

	if ix.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ix.Len())
	}

	p, ok := ix.Lookup("typing-extensions")
	if !ok {
		t.Fatal("Lookup(typing-extensions) not found")
	}
	if p.Name != "typing-extensions" {
		t.Errorf("Name = %q, want normalized %q", p.Name, "typing-extensions")
	}

	if _, ok := ix.Lookup("REQUESTS"); !ok {
		t.Error("Lookup is not case-insensitive")
	}

	if _, ok := ix.Lookup("missing"); ok {
		t.Error("Lookup(missing) = found, want not found")
	}
}

func TestPackage_AllowsPython(t *testing.T) {
	v := func(s string) *semver.Version {
		ver, err := semver.NewVersion(s)
		if err != nil {
			t.Fatalf("bad test version %q: %v", s, err)
		}
		return ver
	}

	tests := []struct {
		name       string
		constraint string
		version    *semver.Version
		want       bool
	}{
		{"any", "*", v("3.11.4"), true},
		{"empty", "", v("3.11.4"), true},
		{"minimum met", ">=3.8", v("3.11.4"), true},
		{"minimum not met", ">=3.8", v("3.7.9"), false},
		{"caret met", "^3.10", v("3.11.0"), true},
		{"caret not met", "^3.10", v("3.9.2"), false},
		{"range excluded", ">=3.7,<3.11", v("3.11.0"), false},
		{"unparseable is permissive", "not-a-constraint", v("3.11.4"), true},
		{"nil version is permissive", ">=3.8", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := NewIndex([]*Package{{Name: "pkg", Version: "1.0.0", PythonVersions: tt.constraint}})
			p, _ := ix.Lookup("pkg")
			if got := p.AllowsPython(tt.version); got != tt.want {
				t.Errorf("AllowsPython(%v) with %q = %v, want %v", tt.version, tt.constraint, got, tt.want)
			}
		})
	}
}

func TestPackage_String(t *testing.T) {
	p := &Package{Name: "requests", Version: "2.31.0"}
	if got := p.String(); got != "requests (2.31.0)" {
		t.Errorf("String() = %q, want %q", got, "requests (2.31.0)")
	}
}
