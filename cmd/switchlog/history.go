package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/switchlog/switchlog/internal/config"
	"github.com/switchlog/switchlog/internal/slack"
)

var (
	historyDays  int
	historySince string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history <channel>",
	Short: "Fetch message history from a registered channel",
	Long: `Fetch recent messages from a channel in the registry.

The channel must be listed in .switchlog/channels.yaml and the bot must
be a member of it.

Examples:
  switchlog history worklog
  switchlog history worklog --days 7
  switchlog history worklog --since 2026-08-01
  switchlog history worklog --human
  switchlog history worklog --limit 50`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyDays, "days", 14, "Number of days to fetch")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Start date (YYYY-MM-DD), overrides --days")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 100, "Maximum messages to return")
}

// HistoryResponse is the JSON output of the history command.
type HistoryResponse struct {
	Channel   string          `json:"channel"`
	ChannelID string          `json:"channel_id"`
	Period    HistoryPeriod   `json:"period"`
	Messages  []slack.Message `json:"messages"`
}

// HistoryPeriod is the date range covered by a history response.
type HistoryPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	reg := mustLoadRegistry(root)

	channel, err := reg.ByName(args[0])
	if err != nil {
		exitWithError(ExitSlackChannelNotFound, "%v", err)
	}

	client, err := slack.NewClient(slack.WithUserCachePath(config.UserCachePath(root)))
	if err != nil {
		exitWithError(ExitSlackMissingToken, "%v", err)
	}

	// Warm the user cache so messages carry names, not IDs
	if _, err := client.FetchUsers(cmd.Context()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load users: %v\n", err)
	}

	var oldest time.Time
	if historySince != "" {
		t, err := time.Parse("2006-01-02", historySince)
		if err != nil {
			exitWithError(ExitError, "invalid date %q; use YYYY-MM-DD", historySince)
		}
		oldest = t
	} else {
		oldest = time.Now().AddDate(0, 0, -historyDays)
	}

	messages, err := client.History(cmd.Context(), channel.ID, oldest, time.Time{}, historyLimit)
	if err != nil {
		if errors.Is(err, slack.ErrNotInChannel) {
			exitWithError(ExitSlackNotMember,
				"bot is not a member of channel %q; invite it with /invite", channel.Name)
		}
		exitWithError(ExitDataError, "fetching history: %v", err)
	}

	response := HistoryResponse{
		Channel:   channel.Name,
		ChannelID: channel.ID,
		Period: HistoryPeriod{
			Start: oldest.Format("2006-01-02"),
			End:   time.Now().Format("2006-01-02"),
		},
		Messages: messages,
	}

	if humanOutput {
		printHistoryHuman(response)
		return nil
	}
	return outputJSON(response)
}

func printHistoryHuman(response HistoryResponse) {
	fmt.Printf("# Channel: %s\n", response.Channel)
	fmt.Printf("Period: %s to %s\n\n", response.Period.Start, response.Period.End)

	if len(response.Messages) == 0 {
		fmt.Println("No messages found in this period.")
		return
	}

	byDate := make(map[string][]slack.Message)
	for _, msg := range response.Messages {
		byDate[msg.Date] = append(byDate[msg.Date], msg)
	}

	var dates []string
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	for _, date := range dates {
		fmt.Printf("## %s\n\n", date)
		for _, msg := range byDate[date] {
			text := msg.Text
			if len(text) > 200 {
				text = text[:200] + "..."
			}
			fmt.Printf("**%s**: %s\n\n", msg.UserName, text)
		}
	}

	fmt.Printf("---\nTotal: %d messages\n", len(response.Messages))
}
