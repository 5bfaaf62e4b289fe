// Package main defines the CLI structure using kong.
package main

import "github.com/alecthomas/kong"

// CLI defines the command-line interface.
type CLI struct {
	Run      RunCmd      `cmd:"" help:"Run a task through the agent swarm"`
	Validate ValidateCmd `cmd:"" help:"Validate a swarm config file"`
	Parse    ParseCmd    `cmd:"" help:"Parse a response and show the extracted directives"`
	Replay   ReplayCmd   `cmd:"" help:"Replay a recorded session"`
	Search   SearchCmd   `cmd:"" help:"Search past session transcripts"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// RunCmd dispatches a task to the entry agent and drains the queue.
type RunCmd struct {
	Task      string `arg:"" help:"Task prompt for the entry agent"`
	Config    string `short:"c" default:"swarm.toml" help:"Config file path"`
	Agent     string `help:"Override the entry agent"`
	Workspace string `help:"Root directory exposed to the fs tool (default: cwd)"`
	LogLevel  string `default:"info" enum:"debug,info,warn,error" help:"Log verbosity"`
	NoSession bool   `help:"Skip session recording"`
}

// ValidateCmd checks a config file without running anything.
type ValidateCmd struct {
	Config string `arg:"" optional:"" default:"swarm.toml" help:"Config file path"`
}

// ParseCmd parses directive text from a file or stdin.
type ParseCmd struct {
	File string `arg:"" optional:"" help:"File to parse (default: stdin)"`
}

// ReplayCmd replays a recorded session.
type ReplayCmd struct {
	Session string `arg:"" optional:"" help:"Session ID (default: most recent)"`
	Config  string `short:"c" default:"swarm.toml" help:"Config file path"`
	Verbose int    `short:"v" type:"counter" help:"Verbosity level (-v, -vv)"`
	List    bool   `short:"l" help:"List recorded sessions"`
}

// SearchCmd searches indexed session history.
type SearchCmd struct {
	Query  string `arg:"" help:"Full-text query"`
	Config string `short:"c" default:"swarm.toml" help:"Config file path"`
	Limit  int    `default:"10" help:"Maximum hits"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

// kongVars returns variables for kong (version info).
func kongVars() kong.Vars {
	return kong.Vars{
		"version": version,
	}
}
