package slack

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/sportsdiff/internal/metrics"
	"github.com/mauv0809/sportsdiff/internal/notifier"
	"github.com/mauv0809/sportsdiff/internal/teams"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       slack.New(token),
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendLineup posts the teams of a lineup, one section per team.
func (s *Notifier) SendLineup(lineup notifier.Lineup, dryRun bool) error {
	msg := s.formatLineup(lineup)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// formatLineup creates the Slack message for a lineup using Block Kit.
func (s *Notifier) formatLineup(lineup notifier.Lineup) slack.Message {
	blocks := make([]slack.Block, 0, len(lineup.Teams)+2)

	title := lineup.Title
	if title == "" {
		title = "Today's teams"
	}
	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("⚽ %s ⚽", title), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(lineup.Teams) == 0 {
		text := slack.NewTextBlockObject("mrkdwn", "No teams generated yet.", false, false)
		blocks = append(blocks, slack.NewSectionBlock(text, nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	byTeam := make(map[string][]teams.Player, len(lineup.Teams))
	anyVest := false
	for _, p := range lineup.Players {
		byTeam[p.TeamID] = append(byTeam[p.TeamID], p)
		anyVest = anyVest || p.Vest
	}

	for _, summary := range teams.Summarize(lineup.Teams, lineup.Players) {
		members := byTeam[summary.TeamID]
		slices.SortStableFunc(members, func(a, b teams.Player) int {
			return cmp.Compare(b.Level, a.Level)
		})

		var sb strings.Builder
		fmt.Fprintf(&sb, "*%s* (avg %.2f)", summary.Name, summary.Average)
		for _, p := range members {
			sb.WriteString("\n• ")
			sb.WriteString(p.Name)
			if p.Vest {
				sb.WriteString(" 🦺")
			}
		}
		if len(members) == 0 {
			sb.WriteString("\n_No players_")
		}
		text := slack.NewTextBlockObject("mrkdwn", sb.String(), false, false)
		blocks = append(blocks, slack.NewSectionBlock(text, nil, nil))
	}

	if anyVest {
		note := slack.NewTextBlockObject("mrkdwn", "🦺 wears a vest", false, false)
		blocks = append(blocks, slack.NewContextBlock("", note))
	}

	return slack.NewBlockMessage(blocks...)
}
