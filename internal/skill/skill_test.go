package skill

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validSkill = `---
name: code-review
description: Review code changes for correctness and style.
---

# Code Review

Read every changed file before commenting.
`

func writeSkill(t *testing.T, root, name, content string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0o644); err != nil {
		t.Fatalf("write SKILL.md: %v", err)
	}
	return dir
}

func TestParse(t *testing.T) {
	s, err := Parse(validSkill)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if s.Name != "code-review" {
		t.Errorf("name expected=%q, got=%q", "code-review", s.Name)
	}
	if !strings.HasPrefix(s.Instructions, "# Code Review") {
		t.Errorf("instructions should start with heading, got=%q", s.Instructions)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no frontmatter", "# Just markdown\n"},
		{"unclosed frontmatter", "---\nname: x\n"},
		{"missing name", "---\ndescription: d\n---\nbody\n"},
		{"missing description", "---\nname: x\n---\nbody\n"},
		{"uppercase name", "---\nname: BadName\ndescription: d\n---\nbody\n"},
		{"leading hyphen", "---\nname: -bad\ndescription: d\n---\nbody\n"},
		{"double hyphen", "---\nname: bad--name\ndescription: d\n---\nbody\n"},
	}

	for i, test := range tests {
		if _, err := Parse(test.content); err == nil {
			t.Errorf("tests[%d] - %s: expected error, got nil", i, test.name)
		}
	}
}

func TestLoadChecksDirectoryName(t *testing.T) {
	root := t.TempDir()
	dir := writeSkill(t, root, "wrong-dir", validSkill)
	if _, err := Load(dir); err == nil {
		t.Error("expected error for name/directory mismatch, got nil")
	}
}

func TestDiscoverAndLibrary(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "code-review", validSkill)
	writeSkill(t, root, "summarize", `---
name: summarize
description: Condense long documents.
---

Keep summaries under five sentences.
`)
	// Directory without SKILL.md is ignored.
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	refs, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("ref count expected=2, got=%d", len(refs))
	}

	lib, err := LoadLibrary([]string{root})
	if err != nil {
		t.Fatalf("LoadLibrary failed: %v", err)
	}
	names := lib.Names()
	if len(names) != 2 || names[0] != "code-review" || names[1] != "summarize" {
		t.Errorf("library names expected=[code-review summarize], got=%v", names)
	}

	blocks, err := lib.InstructionBlocks([]string{"summarize"})
	if err != nil {
		t.Fatalf("InstructionBlocks failed: %v", err)
	}
	if len(blocks) != 1 || !strings.Contains(blocks[0], "SKILL: summarize") {
		t.Errorf("block should carry skill header, got=%v", blocks)
	}

	if _, err := lib.InstructionBlocks([]string{"ghost"}); err == nil {
		t.Error("expected error for unknown skill, got nil")
	}
}

func TestDiscoverMissingDirectory(t *testing.T) {
	refs, err := Discover(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing directory should not error, got %v", err)
	}
	if refs != nil {
		t.Errorf("expected nil refs, got %v", refs)
	}
}
