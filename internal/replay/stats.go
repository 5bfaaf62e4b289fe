package replay

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/vinayprograms/swarm/internal/session"
)

// Stats holds aggregate statistics for a session.
type Stats struct {
	// Wall-clock span between the first and last event
	TotalDurationMs int64

	// Per-agent turn durations
	AgentTurnMs map[string]int64

	ToolCallCount   int
	ToolFailures    int
	ToolTotalMs     int64
	ToolAvgMs       int64
	DelegationCount int
	NudgeCount      int
}

// ComputeStats calculates aggregate statistics from session events.
func ComputeStats(sess *session.Session) *Stats {
	stats := &Stats{
		AgentTurnMs: make(map[string]int64),
	}

	var firstEvent, lastEvent time.Time

	for _, event := range sess.Snapshot() {
		if firstEvent.IsZero() || event.Timestamp.Before(firstEvent) {
			firstEvent = event.Timestamp
		}
		if lastEvent.IsZero() || event.Timestamp.After(lastEvent) {
			lastEvent = event.Timestamp
		}

		switch event.Type {
		case session.EventTurnEnd:
			if event.DurationMs > 0 {
				stats.AgentTurnMs[event.Agent] += event.DurationMs
			}

		case session.EventToolResult:
			stats.ToolCallCount++
			if event.Success != nil && !*event.Success {
				stats.ToolFailures++
			}
			if event.DurationMs > 0 {
				stats.ToolTotalMs += event.DurationMs
			}

		case session.EventDelegation:
			stats.DelegationCount++

		case session.EventNudge:
			stats.NudgeCount++
		}
	}

	if !firstEvent.IsZero() && !lastEvent.IsZero() {
		stats.TotalDurationMs = lastEvent.Sub(firstEvent).Milliseconds()
	}
	if stats.ToolCallCount > 0 {
		stats.ToolAvgMs = stats.ToolTotalMs / int64(stats.ToolCallCount)
	}

	return stats
}

// PrintStats outputs the statistics to the writer.
func PrintStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("STATISTICS"))
	fmt.Fprintln(w, divider)

	fmt.Fprintf(w, "%s %s\n",
		labelStyle.Render("Total Duration:"),
		valueStyle.Render(formatDuration(stats.TotalDurationMs)))

	if len(stats.AgentTurnMs) > 0 {
		fmt.Fprintln(w, labelStyle.Render("Agent Time:"))
		var agents []string
		for a := range stats.AgentTurnMs {
			agents = append(agents, a)
		}
		sort.Strings(agents)
		for _, a := range agents {
			fmt.Fprintf(w, "  %s %s\n",
				labelStyle.Render(a+":"),
				valueStyle.Render(formatDuration(stats.AgentTurnMs[a])))
		}
	}

	if stats.ToolCallCount > 0 {
		fmt.Fprintf(w, "%s %s\n",
			labelStyle.Render("Tool Calls:"),
			valueStyle.Render(fmt.Sprintf("%d (%d failed, avg %s)",
				stats.ToolCallCount, stats.ToolFailures, formatDuration(stats.ToolAvgMs))))
	}
	if stats.DelegationCount > 0 {
		fmt.Fprintf(w, "%s %s\n",
			labelStyle.Render("Delegations:"),
			valueStyle.Render(fmt.Sprintf("%d", stats.DelegationCount)))
	}
	if stats.NudgeCount > 0 {
		fmt.Fprintf(w, "%s %s\n",
			labelStyle.Render("Nudges:"),
			valueStyle.Render(fmt.Sprintf("%d", stats.NudgeCount)))
	}
}

// formatDuration renders milliseconds in a human-friendly unit.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	return fmt.Sprintf("%.1fm", float64(ms)/60000)
}
