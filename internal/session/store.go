package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// JSONL record types for the streaming format.
const (
	RecordTypeHeader = "header" // Session metadata (first line)
	RecordTypeEvent  = "event"  // Individual event
	RecordTypeFooter = "footer" // Final state (last line)
)

// JSONLRecord is a wrapper for JSONL lines with type discrimination.
type JSONLRecord struct {
	RecordType string `json:"_type"`

	// Header fields (when _type == "header")
	ID        string    `json:"id,omitempty"`
	Task      string    `json:"task,omitempty"`
	Agents    []string  `json:"agents,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`

	// Event fields (when _type == "event")
	*Event `json:",omitempty"`

	// Footer fields (when _type == "footer"). The run-level error key
	// differs from the event error key so the embedded Event field is
	// not shadowed during marshaling.
	Status    string    `json:"status,omitempty"`
	RunError  string    `json:"run_error,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Store is the interface for session persistence.
type Store interface {
	Save(sess *Session) error
	Load(id string) (*Session, error)
	List() ([]string, error)
}

// FileStore implements Store as one JSONL file per session.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-based store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory sessions are stored in.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save persists a session as header, events, footer.
func (s *FileStore) Save(sess *Session) error {
	path := filepath.Join(s.dir, sess.ID+".jsonl")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	defer f.Close()

	header := JSONLRecord{
		RecordType: RecordTypeHeader,
		ID:         sess.ID,
		Task:       sess.Task,
		Agents:     sess.Agents,
		CreatedAt:  sess.CreatedAt,
	}
	if err := writeLine(f, header); err != nil {
		return err
	}

	for _, evt := range sess.Snapshot() {
		evtCopy := evt
		if err := writeLine(f, JSONLRecord{RecordType: RecordTypeEvent, Event: &evtCopy}); err != nil {
			return err
		}
	}

	footer := JSONLRecord{
		RecordType: RecordTypeFooter,
		Status:     sess.Status,
		RunError:   sess.Error,
		UpdatedAt:  sess.UpdatedAt,
	}
	return writeLine(f, footer)
}

func writeLine(f *os.File, record JSONLRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// Load reads a session back from its JSONL file.
func (s *FileStore) Load(id string) (*Session, error) {
	path := filepath.Join(s.dir, id+".jsonl")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session %q: %w", id, err)
	}
	defer f.Close()

	sess := &Session{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record JSONLRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("parse session line: %w", err)
		}
		switch record.RecordType {
		case RecordTypeHeader:
			sess.ID = record.ID
			sess.Task = record.Task
			sess.Agents = record.Agents
			sess.CreatedAt = record.CreatedAt
		case RecordTypeEvent:
			if record.Event != nil {
				sess.Events = append(sess.Events, *record.Event)
				if record.Event.SeqID > sess.seqCounter {
					sess.seqCounter = record.Event.SeqID
				}
			}
		case RecordTypeFooter:
			sess.Status = record.Status
			sess.Error = record.RunError
			sess.UpdatedAt = record.UpdatedAt
		default:
			return nil, fmt.Errorf("unknown record type %q", record.RecordType)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if sess.ID == "" {
		return nil, fmt.Errorf("session %q has no header", id)
	}
	// A crashed run leaves no footer; surface it as still running.
	if sess.Status == "" {
		sess.Status = StatusRunning
	}
	return sess, nil
}

// List returns the stored session ids, newest first.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	type item struct {
		id  string
		mod time.Time
	}
	var items []item
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		items = append(items, item{
			id:  strings.TrimSuffix(e.Name(), ".jsonl"),
			mod: info.ModTime(),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].mod.After(items[j].mod) })
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.id
	}
	return ids, nil
}
