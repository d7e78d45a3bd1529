package reminder

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	slackapi "github.com/slack-go/slack"

	"github.com/vibetracker/vibetracker/internal/models"
)

func sampleReminder() models.Reminder {
	return models.Reminder{
		ID:         "rem-1",
		ProjectID:  "proj-1",
		StepNumber: 7,
		Message:    "ship the demo",
	}
}

func TestFormatMessage(t *testing.T) {
	got := formatMessage(sampleReminder())
	if !strings.Contains(got, "step 7") || !strings.Contains(got, "ship the demo") {
		t.Errorf("formatMessage() = %q, want step number and message", got)
	}
}

type mockDiscordSession struct {
	channelID string
	content   string
	err       error
}

func (m *mockDiscordSession) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.channelID = channelID
	m.content = content
	return &discordgo.Message{}, m.err
}

func TestDiscordNotifier(t *testing.T) {
	mock := &mockDiscordSession{}
	n := &DiscordNotifier{session: mock, channelID: "chan-1"}

	if err := n.Notify(sampleReminder()); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}
	if mock.channelID != "chan-1" {
		t.Errorf("channel = %q, want chan-1", mock.channelID)
	}
	if !strings.Contains(mock.content, "ship the demo") {
		t.Errorf("content = %q, want the reminder message", mock.content)
	}
}

func TestDiscordNotifier_SendError(t *testing.T) {
	mock := &mockDiscordSession{err: fmt.Errorf("rate limited")}
	n := &DiscordNotifier{session: mock, channelID: "chan-1"}
	if err := n.Notify(sampleReminder()); err == nil {
		t.Fatal("expected error from failed send")
	}
}

type mockSlackClient struct {
	channel string
	err     error
}

func (m *mockSlackClient) PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.channel = channelID
	return "", "", m.err
}

func TestSlackNotifier(t *testing.T) {
	mock := &mockSlackClient{}
	n := &SlackNotifier{client: mock, channel: "#builds"}

	if err := n.Notify(sampleReminder()); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}
	if mock.channel != "#builds" {
		t.Errorf("channel = %q, want #builds", mock.channel)
	}
}

func TestSlackNotifier_SendError(t *testing.T) {
	mock := &mockSlackClient{err: fmt.Errorf("channel_not_found")}
	n := &SlackNotifier{client: mock, channel: "#builds"}
	if err := n.Notify(sampleReminder()); err == nil {
		t.Fatal("expected error from failed post")
	}
}
