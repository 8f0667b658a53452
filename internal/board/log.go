package board

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// LogFileName is the activity log kept next to the snapshot.
	LogFileName = "activity.jsonl"

	logFileMode = 0o600
	// logCap bounds the log; older lines are dropped on append.
	logCap = 10000
)

// LogEntry is one applied mutation.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	TaskID    string    `json:"task_id"`
	Detail    string    `json:"detail"`
}

// LogMutation records a change in the activity log under dir.
func LogMutation(dir, action, taskID, detail string) error {
	return appendEntry(filepath.Join(dir, LogFileName), LogEntry{
		Timestamp: time.Now().UTC(),
		Action:    action,
		TaskID:    taskID,
		Detail:    detail,
	})
}

func appendEntry(path string, e LogEntry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding activity entry: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode) //nolint:gosec // path inside board dir
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing activity log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing activity log: %w", err)
	}
	return compact(path)
}

// compact drops the oldest lines once the log grows past logCap.
func compact(path string) error {
	tail, total, err := lastLines(path, logCap)
	if err != nil || total <= logCap {
		return err
	}
	return os.WriteFile(path, append(bytes.Join(tail, []byte{'\n'}), '\n'), logFileMode)
}

// ReadLog returns the newest limit entries in chronological order, or all
// of them when limit <= 0. A missing log is empty. Torn lines are skipped.
func ReadLog(dir string, limit int) ([]LogEntry, error) {
	lines, _, err := lastLines(filepath.Join(dir, LogFileName), limit)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading activity log: %w", err)
	}

	out := make([]LogEntry, 0, len(lines))
	for _, l := range lines {
		var e LogEntry
		if json.Unmarshal(l, &e) == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

// lastLines keeps a sliding window of the last n non-empty lines of path
// and reports how many lines were seen in total. n <= 0 keeps every line.
func lastLines(path string, n int) ([][]byte, int, error) {
	f, err := os.Open(path) //nolint:gosec // path inside board dir
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var (
		window [][]byte
		total  int
	)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if len(bytes.TrimSpace(sc.Bytes())) == 0 {
			continue
		}
		total++
		window = append(window, bytes.Clone(sc.Bytes()))
		if n > 0 && len(window) > n {
			window = window[1:]
		}
	}
	return window, total, sc.Err()
}
