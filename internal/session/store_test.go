package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	sess := New("summarize the repo", []string{"orchestrator"})
	sess.AddEvent(Event{Type: EventUser, Agent: "orchestrator", Content: "summarize the repo"})
	sess.AddEvent(Event{
		Type: EventToolCall, Agent: "orchestrator",
		CorrelationID: "id-1", Tool: "fs", Function: "listFiles",
	})
	sess.AddEvent(SuccessEvent(Event{
		Type: EventToolResult, Agent: "orchestrator",
		CorrelationID: "id-1", Tool: "fs", Function: "listFiles",
		Content: "README.md\nmain.go",
	}))
	sess.Finish(nil)

	if err := store.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(sess.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ID != sess.ID || loaded.Task != sess.Task {
		t.Errorf("header wrong: %+v", loaded)
	}
	if loaded.Status != StatusComplete {
		t.Errorf("footer status wrong: %q", loaded.Status)
	}
	if len(loaded.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(loaded.Events))
	}
	if loaded.Events[1].CorrelationID != "id-1" || loaded.Events[1].Tool != "fs" {
		t.Errorf("tool event wrong: %+v", loaded.Events[1])
	}
	if loaded.Events[2].Success == nil || !*loaded.Events[2].Success {
		t.Errorf("result outcome lost on round trip")
	}

	// Appending after a load continues the sequence.
	seq := loaded.AddEvent(Event{Type: EventTurnEnd, Agent: "orchestrator"})
	if seq != 4 {
		t.Errorf("sequence should continue after load. expected=4, got=%d", seq)
	}
}

func TestFileStoreFormat(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	sess := New("task", nil)
	sess.AddEvent(Event{Type: EventUser, Content: "hi"})
	if err := store.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, sess.ID+".jsonl"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header+event+footer, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], `"_type":"header"`) {
		t.Errorf("first line is not a header: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"_type":"event"`) {
		t.Errorf("second line is not an event: %s", lines[1])
	}
	if !strings.Contains(lines[2], `"_type":"footer"`) {
		t.Errorf("last line is not a footer: %s", lines[2])
	}
}

func TestFileStoreLoadMissingAndTruncated(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, err := store.Load("missing"); err == nil {
		t.Errorf("expected error for missing session")
	}

	// A run that crashed before the footer still loads, as running.
	partial := `{"_type":"header","id":"abc","task":"t"}` + "\n" +
		`{"_type":"event","seq":1,"type":"user","content":"hi"}` + "\n"
	if err := os.WriteFile(filepath.Join(dir, "abc.jsonl"), []byte(partial), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	sess, err := store.Load("abc")
	if err != nil {
		t.Fatalf("Load of footerless session: %v", err)
	}
	if sess.Status != StatusRunning {
		t.Errorf("footerless session should be running, got %q", sess.Status)
	}
	if len(sess.Events) != 1 {
		t.Errorf("events lost: %d", len(sess.Events))
	}
}

func TestFileStoreList(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	a := New("first", nil)
	b := New("second", nil)
	if err := store.Save(a); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	ids, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 sessions, got %v", ids)
	}
}
