package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/vinayprograms/swarm/internal/agent"
	"github.com/vinayprograms/swarm/internal/config"
	"github.com/vinayprograms/swarm/internal/history"
	"github.com/vinayprograms/swarm/internal/llm"
	"github.com/vinayprograms/swarm/internal/logging"
	"github.com/vinayprograms/swarm/internal/prompt"
	"github.com/vinayprograms/swarm/internal/scheduler"
	"github.com/vinayprograms/swarm/internal/session"
	"github.com/vinayprograms/swarm/internal/skill"
	"github.com/vinayprograms/swarm/internal/tool"
)

// Run dispatches the task to the entry agent and drains the queue.
func (r *RunCmd) Run() error {
	cfg, err := loadConfig(r.Config)
	if err != nil {
		return err
	}
	if len(cfg.Agents) == 0 {
		return fmt.Errorf("no agents defined in %s", r.Config)
	}

	log := logging.New()
	log.SetLevel(logging.ParseLevel(r.LogLevel))

	storagePath := cfg.StoragePath()
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return fmt.Errorf("error creating storage directory: %w", err)
	}

	// Conversation context store (file or sqlite)
	var ctxStore llm.ContextStore
	if cfg.Storage.PersistContext {
		ctxStore, err = newContextStore(cfg, storagePath)
		if err != nil {
			return err
		}
		if closer, ok := ctxStore.(interface{ Close() error }); ok {
			defer closer.Close()
		}
	}

	// Session recording
	var sess *session.Session
	var sessStore *session.FileStore
	if !r.NoSession {
		agentNames := make([]string, len(cfg.Agents))
		for i, a := range cfg.Agents {
			agentNames[i] = a.Name
		}
		sess = session.New(r.Task, agentNames)
		sessStore, err = session.NewFileStore(filepath.Join(storagePath, "sessions"))
		if err != nil {
			return fmt.Errorf("error creating session store: %w", err)
		}
	}

	// Tools shared by every agent
	workspace := r.Workspace
	if workspace == "" {
		workspace, _ = os.Getwd()
	}
	registry := tool.NewRegistry()
	registry.Register(tool.Calc{})
	registry.Register(tool.NewFS(workspace))

	// Skills
	library, err := skill.LoadLibrary(cfg.Skills.Paths)
	if err != nil {
		return err
	}

	sched := scheduler.New(log)

	callbacks := agent.Callbacks{
		OnContent: func(name, content string) {
			fmt.Printf("%s> %s\n", name, content)
		},
		OnToolResult: func(name string, result prompt.ToolResult) {
			status := "ok"
			if !result.Success {
				status = "error"
			}
			fmt.Fprintf(os.Stderr, "  → [%s] %s: %s\n", name, status, result.Content)
		},
	}

	for _, ac := range cfg.Agents {
		llmCfg := cfg.GetProfile(ac.Profile)
		provider, err := newProvider(llmCfg, cfg.Timeouts.LLM)
		if err != nil {
			return fmt.Errorf("agent %q: %w", ac.Name, err)
		}

		binding := llm.NewBinding(provider, llm.BindingOptions{
			Model:     llmCfg.Model,
			MaxTokens: llmCfg.MaxTokens,
			Store:     ctxStore,
			Key:       ac.Name,
		})
		if ctxStore != nil {
			if err := binding.LoadContext(); err != nil {
				log.Warn("context_load_failed", map[string]interface{}{
					"agent": ac.Name, "error": err.Error(),
				})
			}
		}

		blocks, err := library.InstructionBlocks(ac.Skills)
		if err != nil {
			return fmt.Errorf("agent %q: %w", ac.Name, err)
		}

		sched.RegisterAgent(agent.New(agent.Options{
			Name:      ac.Name,
			Bio:       ac.Bio,
			Binding:   binding,
			Tools:     registry,
			Sched:     sched,
			Log:       log,
			AwareOf:   ac.AwareOf,
			Skills:    blocks,
			Session:   sess,
			MaxNudges: cfg.Scheduler.MaxNudges,
			Callbacks: callbacks,
		}))

		if ctxStore != nil {
			defer func(b *llm.Binding, name string) {
				if err := b.SaveContext(); err != nil {
					log.Warn("context_save_failed", map[string]interface{}{
						"agent": name, "error": err.Error(),
					})
				}
			}(binding, ac.Name)
		}
	}

	entry, err := cfg.EntryAgent()
	if err != nil {
		return err
	}
	entryName := entry.Name
	if r.Agent != "" {
		if _, ok := sched.Agent(r.Agent); !ok {
			return fmt.Errorf("unknown agent %q", r.Agent)
		}
		entryName = r.Agent
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched.SchedulePrompt(entryName, prompt.Text(r.Task), "", nil)
	runErr := sched.Process(ctx)

	if sess != nil {
		sess.Finish(runErr)
		if err := sessStore.Save(sess); err != nil {
			log.Error("session_save_failed", map[string]interface{}{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "\nSession recorded: %s\n", sess.ID)
		}
		if err := indexSession(storagePath, sess); err != nil {
			log.Warn("history_index_failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return runErr
}

// loadConfig reads the config file, falling back to defaults when the
// default path does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) && path == "swarm.toml" {
		return config.Default(), nil
	}
	return cfg, err
}

func newContextStore(cfg *config.Config, storagePath string) (llm.ContextStore, error) {
	switch cfg.Storage.Backend {
	case "", "file":
		store, err := llm.NewFileContextStore(filepath.Join(storagePath, "context"))
		if err != nil {
			return nil, fmt.Errorf("error creating context store: %w", err)
		}
		return store, nil
	case "sqlite":
		store, err := llm.NewSQLiteContextStore(filepath.Join(storagePath, "context.db"))
		if err != nil {
			return nil, fmt.Errorf("error opening context database: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func indexSession(storagePath string, sess *session.Session) error {
	ix, err := history.Open(filepath.Join(storagePath, "history"))
	if err != nil {
		return err
	}
	defer ix.Close()
	return ix.IndexSession(sess)
}
