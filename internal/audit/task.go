// Package audit turns a channel's task-switch messages into per-category
// time summaries.
package audit

import (
	"sort"
	"time"

	"github.com/switchlog/switchlog/internal/entry"
	"github.com/switchlog/switchlog/internal/slack"
)

// Task is one span of time attributed to a category. A task starts at its
// log message and runs until the next log message; the first task is
// extended back to the start of the audited range and the last runs to the
// end of the range.
type Task struct {
	Start time.Time   `json:"start"`
	End   time.Time   `json:"end"`
	Entry entry.Entry `json:"entry"`
}

// Duration is the task's span.
func (t Task) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

// TimedEntry is a switch entry with the time it was logged.
type TimedEntry struct {
	At    time.Time
	Entry entry.Entry
}

// TasksFromMessages converts channel messages into tasks over [start, end].
// Messages that do not parse as switch entries are ignored and do not split
// tasks.
func TasksFromMessages(messages []slack.Message, start, end time.Time) []Task {
	var logs []TimedEntry
	for _, m := range messages {
		e, err := entry.Parse(m.Text)
		if err != nil || e.Kind != entry.KindSwitch {
			continue
		}
		logs = append(logs, TimedEntry{At: m.Time, Entry: e})
	}
	return TasksFromEntries(logs, start, end)
}

// TasksFromEntries converts timed switch entries into tasks over [start, end].
// Entries of other kinds are ignored and do not split tasks.
func TasksFromEntries(logs []TimedEntry, start, end time.Time) []Task {
	filtered := make([]TimedEntry, 0, len(logs))
	for _, lg := range logs {
		if lg.Entry.Kind != entry.KindSwitch {
			continue
		}
		filtered = append(filtered, lg)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].At.Before(filtered[j].At) })

	tasks := make([]Task, 0, len(filtered))
	for i, lg := range filtered {
		taskStart := lg.At
		if i == 0 {
			taskStart = start
		}
		taskEnd := end
		if i < len(filtered)-1 {
			taskEnd = filtered[i+1].At
		}
		if taskEnd.Before(taskStart) {
			continue
		}
		tasks = append(tasks, Task{Start: taskStart, End: taskEnd, Entry: lg.Entry})
	}
	return tasks
}

// CategorySummary aggregates the tasks of one category.
type CategorySummary struct {
	Category string        `json:"category"`
	Tasks    int           `json:"tasks"`
	Duration time.Duration `json:"-"`
	Seconds  int64         `json:"seconds"`
	Percent  float64       `json:"percent"`
}

// Analysis is the result of auditing one channel over one range.
type Analysis struct {
	Categories []CategorySummary `json:"categories"`
	Total      time.Duration     `json:"-"`
	TotalSecs  int64             `json:"total_seconds"`
}

// Analyze groups tasks by category and computes durations and percentages.
// Categories are ordered by descending duration, ties broken by name.
func Analyze(tasks []Task) *Analysis {
	byCategory := make(map[string]*CategorySummary)
	var total time.Duration

	for _, t := range tasks {
		d := t.Duration()
		total += d
		s, ok := byCategory[t.Entry.Category]
		if !ok {
			s = &CategorySummary{Category: t.Entry.Category}
			byCategory[t.Entry.Category] = s
		}
		s.Tasks++
		s.Duration += d
	}

	summaries := make([]CategorySummary, 0, len(byCategory))
	for _, s := range byCategory {
		s.Seconds = int64(s.Duration.Seconds())
		if total > 0 {
			s.Percent = 100 * float64(s.Duration) / float64(total)
		}
		summaries = append(summaries, *s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Duration != summaries[j].Duration {
			return summaries[i].Duration > summaries[j].Duration
		}
		return summaries[i].Category < summaries[j].Category
	})

	return &Analysis{
		Categories: summaries,
		Total:      total,
		TotalSecs:  int64(total.Seconds()),
	}
}
