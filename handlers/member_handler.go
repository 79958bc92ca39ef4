package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"sentinel-bot/bot"
	"sentinel-bot/model"
	"sentinel-bot/utils"
)

// HandleMemberJoin records one join in the raid window and alerts when
// the guild crosses the raid threshold.
func HandleMemberJoin(s *discordgo.Session, m *discordgo.GuildMemberAdd, b *bot.Bot) {
	if m.User == nil || m.User.Bot {
		return
	}

	ev := model.JoinEvent{
		GuildID:        m.GuildID,
		UserID:         m.User.ID,
		Username:       m.User.Username,
		AccountCreated: utils.SnowflakeTime(m.User.ID),
		Timestamp:      time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	signal, err := b.Engine.ProcessJoin(ctx, ev)
	if err != nil {
		log.Printf("Failed to process join for %s/%s: %v", m.GuildID, m.User.ID, err)
		return
	}

	cfg := b.GetConfig()
	if !signal.IsRaid {
		if len(signal.Findings) > 0 {
			detail := fmt.Sprintf("user=%s %s", m.User.ID, findingSummary(signal.Findings))
			log.Printf("Suspicious join: %s", detail)
			utils.LogWarn(cfg.LogWebhookURL, "Raid", "Join Screening", detail)
		}
		return
	}

	detail := fmt.Sprintf("guild=%s joins=%d threshold=%d window=%ds",
		signal.GuildID, signal.RecentJoins, signal.Threshold, signal.WindowSecs)
	log.Printf("Raid detected: %s", detail)
	utils.LogWarn(cfg.LogWebhookURL, "Raid", "Detection", detail)

	if cfg.AlertChannelID == "" {
		return
	}
	embed := &discordgo.MessageEmbed{
		Title: "Raid Alert",
		Color: 15105570, // Orange
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Guild", Value: signal.GuildID, Inline: true},
			{Name: "Recent Joins", Value: fmt.Sprintf("%d in %ds", signal.RecentJoins, signal.WindowSecs), Inline: true},
			{Name: "Threshold", Value: fmt.Sprintf("%d", signal.Threshold), Inline: true},
			{Name: "Latest Member", Value: fmt.Sprintf("<@%s>", m.User.ID), Inline: true},
		},
	}
	if len(signal.Findings) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Member Screening", Value: findingSummary(signal.Findings),
		})
	}
	if _, err := s.ChannelMessageSendEmbed(cfg.AlertChannelID, embed); err != nil {
		log.Printf("Failed to send raid alert: %v", err)
	}
}

func findingSummary(findings []model.Finding) string {
	parts := make([]string, 0, len(findings))
	for _, f := range findings {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Type, f.Severity))
	}
	return strings.Join(parts, ", ")
}
