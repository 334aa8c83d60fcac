package changes

import (
	"errors"
	"testing"
)

func TestParseRepoRef(t *testing.T) {
	tests := []struct {
		ref       string
		wantOwner string
		wantName  string
	}{
		{"octocat/hello-world", "octocat", "hello-world"},
		{"octocat/hello-world.git", "octocat", "hello-world"},
		{"github.com/octocat/hello-world", "octocat", "hello-world"},
		{"https://github.com/octocat/hello-world", "octocat", "hello-world"},
		{"https://github.com/octocat/hello-world.git", "octocat", "hello-world"},
		{"https://github.com/octocat/hello-world/", "octocat", "hello-world"},
		{"http://ghe.example.com/team/tool", "team", "tool"},
		{"git@github.com:octocat/hello-world.git", "octocat", "hello-world"},
		{"ssh://git@github.com/octocat/hello-world.git", "octocat", "hello-world"},
		{"  octocat/my.repo  ", "octocat", "my.repo"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := ParseRepoRef(tt.ref)
			if err != nil {
				t.Fatalf("ParseRepoRef(%q) error: %v", tt.ref, err)
			}
			if got.Owner != tt.wantOwner || got.Name != tt.wantName {
				t.Errorf("ParseRepoRef(%q) = %s/%s, want %s/%s", tt.ref, got.Owner, got.Name, tt.wantOwner, tt.wantName)
			}
		})
	}
}

func TestParseRepoRef_Invalid(t *testing.T) {
	for _, ref := range []string{"", "octocat", "https://github.com/octocat", "a b/c", "https://github.com/o/r/pulls"} {
		if _, err := ParseRepoRef(ref); !errors.Is(err, ErrInvalidRepoRef) {
			t.Errorf("ParseRepoRef(%q) error = %v, want ErrInvalidRepoRef", ref, err)
		}
	}
}

func TestRepoFullName(t *testing.T) {
	r := Repo{Owner: "acme", Name: "widgets"}
	if r.FullName() != "acme/widgets" {
		t.Errorf("FullName() = %q", r.FullName())
	}
	if r.String() != "acme/widgets" {
		t.Errorf("String() = %q", r.String())
	}
}
