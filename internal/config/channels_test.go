package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "channels.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRegistry(t *testing.T) {
	path := writeRegistry(t, `channels:
  - name: worklog
    id: D08SS90DC3X
    purpose: daily task switches
  - name: side-project
    id: C0123ABCDEF
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() unexpected error: %v", err)
	}
	if len(reg.Channels) != 2 {
		t.Fatalf("got %d channels, want 2", len(reg.Channels))
	}

	ch, err := reg.ByName("worklog")
	if err != nil {
		t.Fatalf("ByName() unexpected error: %v", err)
	}
	if ch.ID != "D08SS90DC3X" {
		t.Errorf("ByName(worklog).ID = %q, want D08SS90DC3X", ch.ID)
	}

	if got := reg.ByID("C0123ABCDEF"); got == nil || got.Name != "side-project" {
		t.Errorf("ByID(C0123ABCDEF) = %+v, want side-project", got)
	}
	if got := reg.ByID("C0000000000"); got != nil {
		t.Errorf("ByID(unknown) = %+v, want nil", got)
	}

	if _, err := reg.ByName("nope"); err == nil {
		t.Error("ByName(nope) expected error, got nil")
	}
}

func TestLoadRegistryValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing name",
			content: `channels:
  - id: D08SS90DC3X
`,
		},
		{
			name: "bad channel ID",
			content: `channels:
  - name: worklog
    id: not-an-id
`,
		},
		{
			name: "duplicate name",
			content: `channels:
  - name: worklog
    id: D08SS90DC3X
  - name: worklog
    id: C0123ABCDEF
`,
		},
		{
			name:    "not yaml",
			content: "{{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRegistry(t, tt.content)
			if _, err := LoadRegistry(path); err == nil {
				t.Errorf("LoadRegistry() expected error for %s", tt.name)
			}
		})
	}
}
