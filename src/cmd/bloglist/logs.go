package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// LogEntry is one decoded JSON log line
type LogEntry map[string]interface{}

var (
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	levelStyle = map[string]lipgloss.Style{
		"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

func runLogs(cmd *cobra.Command, args []string) error {
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	} else {
		cfg, err := loadConfig(opts)
		if err != nil {
			return err
		}
		dir = cfg.LogFolder
	}
	filter, _ := cmd.Flags().GetString("filter")

	entries, err := readLogDir(dir)
	if err != nil {
		return err
	}
	return printLogEntries(cmd.OutOrStdout(), entries, filter)
}

// readLogDir decodes every *.log file in dir and orders the entries by time.
// Lines that are not JSON are skipped.
func readLogDir(dir string) ([]LogEntry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("log directory '%s' is not readable: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("'%s' is not a directory", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.log"))
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}

	// Errors are written to both the error and the info log; each is kept once.
	seen := make(map[string]bool)
	var entries []LogEntry
	for _, path := range files {
		fileEntries, err := readLogFile(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range fileEntries {
			if key, err := json.Marshal(entry); err == nil {
				if seen[string(key)] {
					continue
				}
				seen[string(key)] = true
			}
			entry["file"] = filepath.Base(path)
			entries = append(entries, entry)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entryTime(entries[i]).Before(entryTime(entries[j]))
	})
	return entries, nil
}

func readLogFile(path string) ([]LogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return entries, nil
}

func printLogEntries(w io.Writer, entries []LogEntry, filter string) error {
	filter = strings.ToLower(filter)
	for _, entry := range entries {
		formatted := formatLogEntry(entry)
		if filter != "" && !strings.Contains(strings.ToLower(formatted), filter) {
			continue
		}
		if _, err := fmt.Fprintln(w, formatted); err != nil {
			return err
		}
	}
	return nil
}

func entryTime(entry LogEntry) time.Time {
	s, _ := entry["time"].(string)
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func formatTimestamp(timestamp string) string {
	t, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return timestamp
	}
	return t.Format("06-01-02 15:04:05.000000")
}

func formatLogEntry(entry LogEntry) string {
	timestamp, _ := entry["time"].(string)
	level, _ := entry["level"].(string)
	msg, _ := entry["msg"].(string)

	level = strings.ToUpper(level)
	style, ok := levelStyle[level]
	if !ok {
		style = lipgloss.NewStyle()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s",
		timeStyle.Render(formatTimestamp(timestamp)),
		style.Render(fmt.Sprintf("%-5s", level)),
		msg)

	keys := make([]string, 0, len(entry))
	for key := range entry {
		if key != "time" && key != "level" && key != "msg" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&sb, "\n    %s %v", keyStyle.Render(key+":"), entry[key])
	}
	return sb.String()
}
