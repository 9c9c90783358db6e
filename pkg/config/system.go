package config

// SlackConfig is the resolved notification target for session outcomes.
type SlackConfig struct {
	Enabled  bool
	TokenEnv string // env var holding the bot token, "SLACK_BOT_TOKEN" by default
	Channel  string // channel ID such as "C12345678"
}
