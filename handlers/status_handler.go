package handlers

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"sentinel-bot/bot"
	"sentinel-bot/utils"
)

// HandleUserRisk replies with the trust profile and recent trust history
// of the selected user.
func HandleUserRisk(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		utils.SendErrorResponse(s, i, "Missing user option.")
		return
	}
	target := options[0].UserValue(s)
	if target == nil {
		utils.SendErrorResponse(s, i, "Could not resolve user.")
		return
	}

	profile, err := b.Engine.Ledger().Get(target.ID, i.GuildID)
	if err != nil {
		log.Printf("Failed to load profile for /user-risk: %v", err)
		utils.SendErrorResponse(s, i, "Failed to load the user profile.")
		return
	}
	if profile == nil {
		utils.SendSimpleResponse(s, i, "No activity recorded for that user yet.")
		return
	}

	history, err := b.Engine.Ledger().History(target.ID, i.GuildID, 5)
	if err != nil {
		log.Printf("Failed to load trust history for /user-risk: %v", err)
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Trust Score", Value: fmt.Sprintf("%.1f / 100", profile.TrustScore), Inline: true},
		{Name: "Reputation", Value: fmt.Sprintf("%.1f / 100", profile.ReputationScore), Inline: true},
		{Name: "Tier", Value: profile.Tier, Inline: true},
		{Name: "Risk Level", Value: profile.RiskLevel, Inline: true},
		{Name: "Messages", Value: fmt.Sprintf("%d", profile.TotalMessages), Inline: true},
		{Name: "Violations", Value: fmt.Sprintf("%d", profile.TotalViolations), Inline: true},
		{Name: "Sanctions", Value: fmt.Sprintf("warn %d / timeout %d / ban %d",
			profile.WarningCount, profile.TimeoutCount, profile.BanCount), Inline: true},
		{Name: "First Seen", Value: time.Unix(profile.FirstSeen, 0).Format("2006-01-02"), Inline: true},
		{Name: "Last Activity", Value: time.Unix(profile.LastActivity, 0).Format("2006-01-02 15:04"), Inline: true},
	}

	if len(history) > 0 {
		var lines []string
		for _, h := range history {
			lines = append(lines, fmt.Sprintf("%s: %.1f → %.1f (%s)",
				time.Unix(h.Timestamp, 0).Format("01-02 15:04"), h.OldScore, h.NewScore, h.Reason))
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Recent Trust History",
			Value: strings.Join(lines, "\n"),
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("Risk Profile: %s", target.Username),
		Color:  0x5865F2,
		Fields: fields,
	}
	respondEmbed(s, i, embed)
}

// HandleThreatStats replies with the engine counters.
func HandleThreatStats(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	stats := b.Engine.Stats()
	tracked, err := b.Engine.Ledger().TrackedUsers(i.GuildID)
	if err != nil {
		log.Printf("Failed to count tracked users: %v", err)
	}

	embed := &discordgo.MessageEmbed{
		Title: "Threat Engine Stats",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Messages Processed", Value: fmt.Sprintf("%d", stats.MessagesProcessed), Inline: true},
			{Name: "Joins Processed", Value: fmt.Sprintf("%d", stats.JoinsProcessed), Inline: true},
			{Name: "Threats Detected", Value: fmt.Sprintf("%d", stats.ThreatsDetected), Inline: true},
			{Name: "Actions Taken", Value: fmt.Sprintf("%d", stats.ActionsTaken), Inline: true},
			{Name: "Raids Detected", Value: fmt.Sprintf("%d", stats.RaidsDetected), Inline: true},
			{Name: "Degraded Events", Value: fmt.Sprintf("%d", stats.DegradedEvents), Inline: true},
			{Name: "Judge Calls", Value: fmt.Sprintf("%d", stats.JudgeCalls), Inline: true},
			{Name: "Users in Tracker", Value: fmt.Sprintf("%d", b.Engine.Tracker().TrackedUsers()), Inline: true},
			{Name: "Profiles in Guild", Value: fmt.Sprintf("%d", tracked), Inline: true},
		},
	}
	respondEmbed(s, i, embed)
}

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending embed response: %v", err)
	}
}
