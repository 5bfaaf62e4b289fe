package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vinayprograms/swarm/internal/config"
	"github.com/vinayprograms/swarm/internal/directive"
	"github.com/vinayprograms/swarm/internal/history"
	"github.com/vinayprograms/swarm/internal/replay"
	"github.com/vinayprograms/swarm/internal/session"
)

// Run validates a config file.
func (v *ValidateCmd) Run() error {
	cfg, err := config.LoadFile(v.Config)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Valid (%d agents", len(cfg.Agents))
	if entry, err := cfg.EntryAgent(); err == nil {
		fmt.Printf(", entry: %s", entry.Name)
	}
	fmt.Println(")")
	return nil
}

// Run parses directive text and prints what was extracted.
func (p *ParseCmd) Run() error {
	var raw []byte
	var err error
	if p.File != "" {
		raw, err = os.ReadFile(p.File)
	} else {
		raw, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return err
	}

	msg := directive.Parse(string(raw))

	for _, w := range msg.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	fmt.Printf("done: %v\n", msg.Done)
	for _, tc := range msg.ToolCalls {
		fmt.Printf("tool: %s.%s [%s] args=%q\n", tc.Tool, tc.Function, tc.CorrelationID, tc.RawArgs)
	}
	for _, ac := range msg.AgentCalls {
		fmt.Printf("agent: %s [%s] message=%q\n", ac.Agent, ac.CorrelationID, ac.Message)
	}
	if msg.Content != "" {
		fmt.Printf("content:\n%s\n", msg.Content)
	}
	return nil
}

// Run replays a recorded session.
func (rc *ReplayCmd) Run() error {
	cfg, err := loadConfig(rc.Config)
	if err != nil {
		return err
	}

	store, err := session.NewFileStore(filepath.Join(cfg.StoragePath(), "sessions"))
	if err != nil {
		return err
	}

	if rc.List {
		ids, err := store.List()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("no recorded sessions")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	}

	id := rc.Session
	if id == "" {
		ids, err := store.List()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return fmt.Errorf("no recorded sessions")
		}
		id = ids[0]
	}

	return replay.New(os.Stdout, rc.Verbose).ReplayFile(store, id)
}

// Run searches indexed session history.
func (s *SearchCmd) Run() error {
	cfg, err := loadConfig(s.Config)
	if err != nil {
		return err
	}

	ix, err := history.Open(filepath.Join(cfg.StoragePath(), "history"))
	if err != nil {
		return err
	}
	defer ix.Close()

	hits, err := ix.Search(s.Query, s.Limit)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("no matches")
		return nil
	}

	for _, hit := range hits {
		content := hit.Content
		if len(content) > 120 {
			content = content[:120] + "..."
		}
		content = strings.ReplaceAll(content, "\n", " ")
		fmt.Printf("%.2f  %s  [%s/%s]  %s\n", hit.Score, hit.SessionID, hit.Agent, hit.EventType, content)
	}
	return nil
}

// Run prints version information.
func (VersionCmd) Run() error {
	fmt.Printf("swarm version %s (commit: %s, built: %s)\n", version, commit, buildTime)
	return nil
}
