package task

import (
	"strings"

	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
)

// ValidatePriority checks that a priority is one of the known values.
func ValidatePriority(p Priority) error {
	if p.Valid() {
		return nil
	}
	return clierr.Newf(clierr.InvalidPriority, "invalid priority %q", p).
		WithDetails(map[string]any{
			"priority": string(p),
			"allowed":  Priorities,
		})
}

// ParsePriority resolves user input case-insensitively.
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if strings.EqualFold(string(p), s) {
			return p, nil
		}
	}
	return "", ValidatePriority(Priority(s))
}

// ValidateDate returns a CLIError for invalid date input.
func ValidateDate(field, input string, err error) *clierr.Error {
	return clierr.Newf(clierr.InvalidDate, "invalid %s date: %v", field, err).
		WithDetails(map[string]any{
			"field": field,
			"input": input,
		})
}

// ValidateFields checks the shape of a field set carried by a command.
// Every failure is an InvalidCommand error naming the offending field.
func ValidateFields(f Fields) error {
	if strings.TrimSpace(f.Title) == "" {
		return invalidField("title", "title is required")
	}
	if !f.Priority.Valid() {
		return invalidField("priority", "invalid priority %q", f.Priority)
	}
	if !f.DueDate.Valid() {
		return invalidField("due_date", "invalid due date %q: expected YYYY-MM-DD", f.DueDate)
	}
	for i, u := range f.Assignees {
		if u.ID == "" || u.Name == "" {
			return invalidField("assignees", "assignee %d needs an id and a name", i)
		}
	}
	for i, tg := range f.Tags {
		if tg.ID == "" || tg.Name == "" {
			return invalidField("tags", "tag %d needs an id and a name", i)
		}
	}
	return nil
}

func invalidField(field, format string, args ...any) *clierr.Error {
	return clierr.Newf(clierr.InvalidCommand, format, args...).
		WithDetails(map[string]any{"field": field})
}
