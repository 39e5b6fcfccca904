package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/switchlog/switchlog/internal/audit"
	"github.com/switchlog/switchlog/internal/config"
	"github.com/switchlog/switchlog/internal/slack"
)

var (
	auditDay   string
	auditWeek  string
	auditSince string
	auditUntil string
	auditLocal bool
)

var auditCmd = &cobra.Command{
	Use:   "audit <channel>",
	Short: "Summarize time per category for a channel",
	Long: `Compute how time was split across categories in a channel.

Each "ts:" entry starts a task that runs until the next entry. Tasks are
grouped by category and summed over the chosen range. The default range
is today; --week covers seven days starting at the given date, or the
current week when no date is given.

By default messages are fetched from Slack. With --local the audit runs
against the entries journaled by the webhook server, without touching
the Slack API.

Examples:
  switchlog audit worklog
  switchlog audit worklog --day 2026-08-28
  switchlog audit worklog --week 2026-08-28
  switchlog audit worklog --since 2026-08-01 --until 2026-08-15
  switchlog audit worklog --local --week 2026-08-28 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().StringVar(&auditDay, "day", "", "Audit a single day (YYYY-MM-DD, default today)")
	auditCmd.Flags().StringVar(&auditWeek, "week", "", "Audit seven days starting at this date (YYYY-MM-DD)")
	auditCmd.Flags().StringVar(&auditSince, "since", "", "Range start date (YYYY-MM-DD)")
	auditCmd.Flags().StringVar(&auditUntil, "until", "", "Range end date (YYYY-MM-DD, default today)")
	auditCmd.Flags().BoolVar(&auditLocal, "local", false, "Audit the local journal instead of Slack history")
}

// auditRange resolves the flag combination into a time range.
func auditRange() (audit.Range, error) {
	loc := time.Local
	switch {
	case auditSince != "":
		return audit.BetweenRange(auditSince, auditUntil, loc)
	case auditWeek != "":
		return audit.WeekRange(auditWeek, loc)
	default:
		return audit.DayRange(auditDay, loc)
	}
}

func runAudit(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	reg := mustLoadRegistry(root)

	channel, err := reg.ByName(args[0])
	if err != nil {
		exitWithError(ExitSlackChannelNotFound, "%v", err)
	}

	r, err := auditRange()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	var tasks []audit.Task
	if auditLocal {
		tasks = localTasks(root, channel.ID, r)
	} else {
		tasks = slackTasks(cmd, root, channel.ID, channel.Name, r)
	}

	report := audit.NewReport(channel.Name, channel.ID, r, tasks)
	if humanOutput {
		fmt.Print(report.Human())
		return nil
	}
	return outputJSON(report)
}

func slackTasks(cmd *cobra.Command, root, channelID, channelName string, r audit.Range) []audit.Task {
	client, err := slack.NewClient(slack.WithUserCachePath(config.UserCachePath(root)))
	if err != nil {
		exitWithError(ExitSlackMissingToken, "%v", err)
	}

	messages, err := client.History(cmd.Context(), channelID, r.Start, r.End, 0)
	if err != nil {
		if errors.Is(err, slack.ErrNotInChannel) {
			exitWithError(ExitSlackNotMember,
				"bot is not a member of channel %q; invite it with /invite", channelName)
		}
		exitWithError(ExitDataError, "fetching history: %v", err)
	}
	return audit.TasksFromMessages(messages, r.Start, r.End)
}

func localTasks(root, channelID string, r audit.Range) []audit.Task {
	db := mustOpenDatabase(root)
	defer db.Close()

	entries, err := db.EntriesBetween(channelID, r.Start, r.End)
	if err != nil {
		exitWithError(ExitError, "reading journal: %v", err)
	}

	logs := make([]audit.TimedEntry, 0, len(entries))
	for _, le := range entries {
		logs = append(logs, audit.TimedEntry{At: le.LoggedAt, Entry: le.Entry})
	}
	return audit.TasksFromEntries(logs, r.Start, r.End)
}
