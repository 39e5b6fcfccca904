package audit

import (
	"fmt"
	"strings"
	"time"
)

// Report is the audit output for one channel and range.
type Report struct {
	Channel   string    `json:"channel"`
	ChannelID string    `json:"channel_id"`
	Period    Period    `json:"period"`
	Analysis  *Analysis `json:"analysis"`
}

// Period is the audited time range in display form.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// NewReport builds a report for a set of tasks.
func NewReport(channel, channelID string, r Range, tasks []Task) *Report {
	return &Report{
		Channel:   channel,
		ChannelID: channelID,
		Period: Period{
			Start: r.Start.Format("2006-01-02 15:04"),
			End:   r.End.Format("2006-01-02 15:04"),
		},
		Analysis: Analyze(tasks),
	}
}

// FormatDuration renders a duration as h:mm:ss.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// Human renders the report as an aligned text table.
func (r *Report) Human() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Channel: %s\n", r.Channel)
	fmt.Fprintf(&b, "Period: %s to %s\n\n", r.Period.Start, r.Period.End)

	if len(r.Analysis.Categories) == 0 {
		b.WriteString("No log entries found in this period.\n")
		return b.String()
	}

	catWidth := len("Category")
	durWidth := len("Duration")
	for _, c := range r.Analysis.Categories {
		if len(c.Category) > catWidth {
			catWidth = len(c.Category)
		}
		if w := len(FormatDuration(c.Duration)); w > durWidth {
			durWidth = w
		}
	}
	if w := len(FormatDuration(r.Analysis.Total)); w > durWidth {
		durWidth = w
	}

	rule := fmt.Sprintf("+-%s-+-%s-+-------+------------+\n",
		strings.Repeat("-", catWidth), strings.Repeat("-", durWidth))

	b.WriteString(rule)
	fmt.Fprintf(&b, "| %-*s | %-*s | Tasks | %% of Total |\n", catWidth, "Category", durWidth, "Duration")
	b.WriteString(rule)
	for _, c := range r.Analysis.Categories {
		fmt.Fprintf(&b, "| %-*s | %*s | %5d | %9.2f%% |\n",
			catWidth, c.Category, durWidth, FormatDuration(c.Duration), c.Tasks, c.Percent)
	}
	b.WriteString(rule)
	fmt.Fprintf(&b, "| %-*s | %*s | %5d | %9.2f%% |\n",
		catWidth, "Total", durWidth, FormatDuration(r.Analysis.Total), totalTasks(r.Analysis), 100.0)
	b.WriteString(rule)

	return b.String()
}

func totalTasks(a *Analysis) int {
	n := 0
	for _, c := range a.Categories {
		n += c.Tasks
	}
	return n
}
