package planner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

var (
	maxMarker    = regexp.MustCompile(`(?m)^[ \t]*Max[ \t]*=[ \t]*(\d+)[ \t\r]*$`)
	itemMarker   = regexp.MustCompile(`(?m)^\d+\.[ \t]+`)
	sectionTitle = regexp.MustCompile(`(?i)section:[ \t]*(.+)`)
)

// PlanningError is a refined task chain the parser cannot turn into a
// bounded task list.
type PlanningError struct {
	Reason string
}

func (e *PlanningError) Error() string {
	return "plan: " + e.Reason
}

// ParsePlan reads the refined planner output: a numbered list followed by a
// "Max = <n>" line. It returns at most n tasks, in list order, indexed by
// their position in the parsed list. When several lines carry the marker the
// last one counts; a "Max =" inside a sentence is not a marker.
func ParsePlan(text string) ([]models.TaskSpec, int, error) {
	all := maxMarker.FindAllStringSubmatchIndex(text, -1)
	if len(all) == 0 {
		return nil, 0, &PlanningError{Reason: `no "Max = <number>" line in task chain`}
	}
	loc := all[len(all)-1]
	maxItems, err := strconv.Atoi(text[loc[2]:loc[3]])
	if err != nil {
		return nil, 0, &PlanningError{Reason: fmt.Sprintf("bad Max value %q", text[loc[2]:loc[3]])}
	}
	body := text[:loc[0]] + text[loc[1]:]

	tasks := splitItems(body)
	if len(tasks) > maxItems {
		tasks = tasks[:maxItems]
	}
	if len(tasks) == 0 {
		return nil, 0, &PlanningError{Reason: fmt.Sprintf("no tasks left with Max = %d", maxItems)}
	}
	return tasks, maxItems, nil
}

// splitItems cuts body at each unindented "<digits>. " line start, so nested
// numbered lists stay inside their task. Text before the first item is
// preamble and is dropped.
func splitItems(body string) []models.TaskSpec {
	bounds := itemMarker.FindAllStringIndex(body, -1)
	var tasks []models.TaskSpec
	for i, b := range bounds {
		end := len(body)
		if i+1 < len(bounds) {
			end = bounds[i+1][0]
		}
		desc := strings.TrimSpace(body[b[1]:end])
		if desc == "" {
			continue
		}
		n := len(tasks) + 1
		tasks = append(tasks, models.TaskSpec{
			Index:       n,
			Title:       titleOf(desc, n),
			Description: desc,
		})
	}
	return tasks
}

func titleOf(desc string, n int) string {
	if m := sectionTitle.FindStringSubmatch(desc); m != nil {
		if title := strings.Trim(strings.TrimSpace(m[1]), "*_ "); title != "" {
			return title
		}
	}
	return fmt.Sprintf("Section %d", n)
}
