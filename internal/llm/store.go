package llm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ContextStore persists conversation contexts keyed by an opaque
// identifier (typically the agent name). Load returns nil, nil when
// nothing was saved under key.
type ContextStore interface {
	Save(key string, messages []Message) error
	Load(key string) ([]Message, error)
	Delete(key string) error
}

// FileContextStore keeps one JSON file per key inside a directory.
type FileContextStore struct {
	dir string
}

// NewFileContextStore creates the directory if needed.
func NewFileContextStore(dir string) (*FileContextStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create context dir: %w", err)
	}
	return &FileContextStore{dir: dir}, nil
}

func (s *FileContextStore) path(key string) string {
	// Keys come from agent names; flatten anything path-like.
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '.':
			return '_'
		}
		return r
	}, key)
	return filepath.Join(s.dir, safe+".json")
}

func (s *FileContextStore) Save(key string, messages []Message) error {
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("encode context: %w", err)
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write context: %w", err)
	}
	return os.Rename(tmp, s.path(key))
}

func (s *FileContextStore) Load(key string) ([]Message, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read context: %w", err)
	}
	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	return messages, nil
}

func (s *FileContextStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
