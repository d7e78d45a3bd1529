package reminder

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	slackapi "github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/vibetracker/vibetracker/internal/models"
)

// Notifier delivers one due reminder to the user.
type Notifier interface {
	Notify(rem models.Reminder) error
}

// formatMessage renders the delivery text for a reminder.
func formatMessage(rem models.Reminder) string {
	return fmt.Sprintf("Reminder for step %d: %s", rem.StepNumber, rem.Message)
}

// LogNotifier writes reminders to the log. It is the default delivery
// channel and the fallback for local development.
type LogNotifier struct {
	Log *zap.Logger
}

func (n *LogNotifier) Notify(rem models.Reminder) error {
	n.Log.Info("reminder due",
		zap.String("reminder_id", rem.ID),
		zap.String("project_id", rem.ProjectID),
		zap.Int("step_number", rem.StepNumber),
		zap.String("message", rem.Message),
	)
	return nil
}

// discordSender abstracts the discordgo.Session method we use, enabling
// test mocks.
type discordSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts reminders to a Discord channel.
type DiscordNotifier struct {
	session   discordSender
	channelID string
}

// NewDiscordNotifier creates a Discord notifier from a bot token.
func NewDiscordNotifier(token, channelID string) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("reminder: discord session: %w", err)
	}
	return &DiscordNotifier{session: session, channelID: channelID}, nil
}

func (n *DiscordNotifier) Notify(rem models.Reminder) error {
	if _, err := n.session.ChannelMessageSend(n.channelID, formatMessage(rem)); err != nil {
		return fmt.Errorf("reminder: discord send: %w", err)
	}
	return nil
}

// slackPoster abstracts the Slack API method we use, enabling test mocks.
type slackPoster interface {
	PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// SlackNotifier posts reminders to a Slack channel.
type SlackNotifier struct {
	client  slackPoster
	channel string
}

// NewSlackNotifier creates a Slack notifier from a bot token.
func NewSlackNotifier(token, channel string) *SlackNotifier {
	return &SlackNotifier{client: slackapi.New(token), channel: channel}
}

func (n *SlackNotifier) Notify(rem models.Reminder) error {
	_, _, err := n.client.PostMessage(n.channel, slackapi.MsgOptionText(formatMessage(rem), false))
	if err != nil {
		return fmt.Errorf("reminder: slack send: %w", err)
	}
	return nil
}
