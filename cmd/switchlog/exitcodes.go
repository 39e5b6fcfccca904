package main

const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing workspace, bad config)
	ExitDataError   = 3 // Data error (malformed input, API failure)
)

// Exit codes specific to Slack-backed commands
const (
	ExitSlackMissingToken    = 1 // SLACK_BOT_TOKEN not set
	ExitSlackChannelNotFound = 2 // Channel not in registry
	ExitSlackNotMember       = 3 // Bot not member of channel
)
