package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"ohtopup/events"
)

// DiscordNotifier forwards large-win alerts to a Discord channel. Delivery is
// best effort: a failed send is logged and the play is unaffected.
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

// NewDiscordNotifier creates a notifier for the given bot token and channel
func NewDiscordNotifier(token, channelID string) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("failed to open Discord session: %w", err)
	}

	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}, nil
}

// Subscribe registers the notifier's handlers on the event bus
func (n *DiscordNotifier) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeLargeWin, n.handleLargeWin)
}

func (n *DiscordNotifier) handleLargeWin(ctx context.Context, event events.Event) {
	alert, ok := event.(events.LargeWinEvent)
	if !ok {
		return
	}

	message := fmt.Sprintf("🎲 Large win: **%s** staked %.2f and won %.2f (threshold %.2f)",
		alert.Username, alert.BetAmount, alert.Payout, alert.Threshold)

	if _, err := n.session.ChannelMessageSend(n.channelID, message); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"userID": alert.UserID,
			"payout": alert.Payout,
		}).Error("Failed to send large-win alert")
	}
}

// Close shuts down the Discord session
func (n *DiscordNotifier) Close() error {
	return n.session.Close()
}
