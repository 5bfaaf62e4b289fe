package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FS exposes read-only filesystem access rooted at a base directory.
// Paths in arguments are resolved relative to the root and may not
// escape it.
type FS struct {
	Root string
}

// NewFS creates a filesystem tool rooted at root (default: cwd).
func NewFS(root string) *FS {
	if root == "" {
		root = "."
	}
	return &FS{Root: root}
}

func (*FS) Identifier() string { return "fs" }

func (f *FS) Functions() map[string]Func {
	return map[string]Func{
		"listFiles": f.listFiles,
		"readFile":  f.readFile,
	}
}

// resolve joins a user-supplied path onto the root and rejects
// escapes via "..".
func (f *FS) resolve(arg interface{}) (string, error) {
	rel, ok := arg.(string)
	if !ok {
		return "", fmt.Errorf("path must be a string, got %v", arg)
	}
	joined := filepath.Join(f.Root, rel)
	rootAbs, err := filepath.Abs(f.Root)
	if err != nil {
		return "", err
	}
	pathAbs, err := filepath.Abs(joined)
	if err != nil {
		return "", err
	}
	if pathAbs != rootAbs && !strings.HasPrefix(pathAbs, rootAbs+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the tool root", rel)
	}
	return pathAbs, nil
}

func (f *FS) listFiles(_ context.Context, args []interface{}) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("listFiles needs exactly one path argument")
	}
	dir, err := f.resolve(args[0])
	if err != nil {
		return "", err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("list %q: %w", args[0], err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "(empty directory)", nil
	}
	return strings.Join(names, "\n"), nil
}

func (f *FS) readFile(_ context.Context, args []interface{}) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("readFile needs exactly one path argument")
	}
	path, err := f.resolve(args[0])
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", args[0], err)
	}
	return string(data), nil
}
