package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"sentinel-bot/bot"
	"sentinel-bot/model"
	"sentinel-bot/utils"
)

const attachmentHeadBytes = 512

// HandleMessageCreate runs one inbound message through the engine and
// applies the resulting decision record exactly once.
func HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate, b *bot.Bot) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}
	if m.GuildID == "" {
		return
	}

	ev := model.MessageEvent{
		MessageID:   m.ID,
		GuildID:     m.GuildID,
		ChannelID:   m.ChannelID,
		UserID:      m.Author.ID,
		Username:    m.Author.Username,
		Content:     m.Content,
		Attachments: fetchAttachments(m.Attachments),
		Timestamp:   m.Timestamp,
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	assessment, record, err := b.Engine.ProcessMessage(ctx, ev)
	if err != nil {
		log.Printf("Failed to process message %s: %v", m.ID, err)
		utils.LogError(b.GetConfig().LogWebhookURL, "Engine", "ProcessMessage",
			fmt.Sprintf("message=%s user=%s: %v", m.ID, m.Author.ID, err))
		return
	}
	if !record.ShouldPunish && !record.DeleteMessage {
		return
	}

	executeDecision(s, m, b, assessment, record)
}

// executeDecision applies one decision record: delete, then the
// punishment, then the admin notification.
func executeDecision(s *discordgo.Session, m *discordgo.MessageCreate, b *bot.Bot, assessment *model.RiskAssessment, record *model.DecisionRecord) {
	cfg := b.GetConfig()

	if record.DeleteMessage {
		if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
			log.Printf("Failed to delete message %s: %v", m.ID, err)
		}
	}

	switch record.Action {
	case model.PunishTimeout:
		until := time.Now().Add(record.Duration)
		if err := s.GuildMemberTimeout(m.GuildID, m.Author.ID, &until); err != nil {
			log.Printf("Failed to timeout %s: %v", m.Author.ID, err)
		}
	case model.PunishBan:
		if err := s.GuildBanCreateWithReason(m.GuildID, m.Author.ID, record.Reason, 1); err != nil {
			log.Printf("Failed to ban %s: %v", m.Author.ID, err)
		}
	case model.PunishWarning:
		warn := fmt.Sprintf("<@%s> %s", m.Author.ID, record.Reason)
		if _, err := s.ChannelMessageSend(m.ChannelID, warn); err != nil {
			log.Printf("Failed to warn %s: %v", m.Author.ID, err)
		}
	}

	detail := fmt.Sprintf("user=%s action=%s score=%.2f level=%s reason=%s",
		m.Author.ID, record.Action, assessment.Score, assessment.Level, record.Reason)
	if record.Degraded {
		detail += " (degraded: not durably recorded)"
		utils.LogWarn(cfg.LogWebhookURL, "Engine", "Moderation", detail)
	} else {
		utils.LogInfo(cfg.LogWebhookURL, "Engine", "Moderation", detail)
	}

	if record.NotifyAdmins && cfg.AlertChannelID != "" {
		sendAdminAlert(s, cfg.AlertChannelID, m, assessment, record)
	}
}

func sendAdminAlert(s *discordgo.Session, channelID string, m *discordgo.MessageCreate, assessment *model.RiskAssessment, record *model.DecisionRecord) {
	fields := []*discordgo.MessageEmbedField{
		{Name: "User", Value: fmt.Sprintf("<@%s> (%s)", m.Author.ID, m.Author.ID), Inline: true},
		{Name: "Action", Value: record.Action, Inline: true},
		{Name: "Risk Score", Value: fmt.Sprintf("%.2f (%s)", assessment.Score, assessment.Level), Inline: true},
		{Name: "Reason", Value: record.Reason},
	}
	if top := assessment.TopFinding(); top != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Top Finding", Value: fmt.Sprintf("%s (%s): %s", top.Type, top.Severity, top.Detail),
		})
	}
	embed := &discordgo.MessageEmbed{
		Title:  "Moderation Alert",
		Color:  15158332, // Red
		Fields: fields,
	}
	if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Printf("Failed to send admin alert: %v", err)
	}
}

// fetchAttachments converts the gateway attachments, pulling the leading
// bytes of each file for signature checks. Fetch failures leave Head
// empty; the detector reports those as unanalyzable.
func fetchAttachments(atts []*discordgo.MessageAttachment) []model.Attachment {
	out := make([]model.Attachment, 0, len(atts))
	for _, a := range atts {
		att := model.Attachment{
			Filename: a.Filename,
			URL:      a.URL,
			Size:     a.Size,
		}
		att.Head = fetchHead(a.URL)
		out = append(out, att)
	}
	return out
}

func fetchHead(url string) []byte {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", attachmentHeadBytes-1))

	resp, err := utils.GlobalHTTPClient.Do(req)
	if err != nil {
		log.Printf("Failed to fetch attachment head: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil
	}
	head, err := io.ReadAll(io.LimitReader(resp.Body, attachmentHeadBytes))
	if err != nil {
		return nil
	}
	return head
}
