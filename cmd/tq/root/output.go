package root

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"todoquest/internal/engine"
	"todoquest/internal/ui"
)

// printStructured writes v as JSON or YAML when the output flag asks for it and
// reports whether it did.
func printStructured(w io.Writer, v any) (bool, error) {
	switch outputFormat() {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	return tw
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDeadline accepts RFC 3339 or a local date with optional time. A bare
// date means the end of that day.
func parseDeadline(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range deadlineLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			t = t.Add(24*time.Hour - time.Minute)
		}
		return t, nil
	}
	return time.Time{}, engine.ValidationError{Field: "deadline", Reason: fmt.Sprintf("cannot parse %q (use YYYY-MM-DD [HH:MM] or RFC 3339)", s)}
}

func formatDeadline(t *time.Time, now time.Time) string {
	if t == nil {
		return ""
	}
	s := t.Local().Format("2006-01-02 15:04")
	if t.Before(now) {
		return ui.Bad.Render(s + " overdue")
	}
	return s
}

func levelLine(res *engine.CompleteResult) string {
	s := fmt.Sprintf("%d → %d", res.LevelBefore, res.LevelAfter)
	if res.LevelUp {
		s += " " + ui.BadgeLevelUp
	}
	return s
}
