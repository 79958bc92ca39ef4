package bot

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"sentinel-bot/engine"
	"sentinel-bot/model"
	"sentinel-bot/utils"
)

// BotProvider defines the methods the scheduler needs from the Bot.
type BotProvider interface {
	GetConfig() *model.Config
	GetSession() *discordgo.Session
	GetEngine() *engine.Engine
}

// Scheduler manages all scheduled tasks.
type Scheduler struct {
	bot                  BotProvider
	done                 chan struct{}
	wg                   sync.WaitGroup
	catalogRefreshTicker *time.Ticker
	statsTicker          *time.Ticker
}

// NewScheduler creates a new scheduler.
func NewScheduler(bot BotProvider) *Scheduler {
	return &Scheduler{
		bot:  bot,
		done: make(chan struct{}),
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	s.wg.Add(2)

	go s.startScheduledTasks()
	go s.startDailyTasks()
}

// Stop terminates all scheduled tasks gracefully.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) startScheduledTasks() {
	defer s.wg.Done()
	s.catalogRefreshTicker = time.NewTicker(10 * time.Minute)
	s.statsTicker = time.NewTicker(1 * time.Hour)

	defer s.catalogRefreshTicker.Stop()
	defer s.statsTicker.Stop()

	for {
		select {
		case <-s.catalogRefreshTicker.C:
			if err := s.bot.GetEngine().Catalogs().Refresh(); err != nil {
				log.Printf("Catalog refresh failed: %v", err)
			} else {
				log.Println("Detector catalogs refreshed.")
			}
		case <-s.statsTicker.C:
			s.reportStats("Hourly Stats")
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) startDailyTasks() {
	defer s.wg.Done()
	runHours := []int{5, 13, 21}

	for {
		now := time.Now()
		var next time.Time

		for _, h := range runHours {
			t := time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, now.Location())
			if now.Before(t) {
				next = t
				break
			}
		}

		if next.IsZero() {
			tomorrow := now.Add(24 * time.Hour)
			next = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), runHours[0], 0, 0, 0, now.Location())
		}

		log.Printf("Next daily report scheduled for: %v", next)
		select {
		case <-time.After(next.Sub(now)):
			s.runDailyReport()
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) reportStats(operation string) {
	stats := s.bot.GetEngine().Stats()
	detail := fmt.Sprintf("messages=%d joins=%d threats=%d actions=%d raids=%d degraded=%d judge_calls=%d",
		stats.MessagesProcessed, stats.JoinsProcessed, stats.ThreatsDetected,
		stats.ActionsTaken, stats.RaidsDetected, stats.DegradedEvents, stats.JudgeCalls)
	log.Printf("Engine stats: %s", detail)
	if err := utils.LogInfo(s.bot.GetConfig().LogWebhookURL, "Engine", operation, detail); err != nil {
		log.Printf("Failed to send stats log: %v", err)
	}
}

func (s *Scheduler) runDailyReport() {
	log.Println("Running daily threat report...")
	s.reportStats("Daily Report")

	cfg := s.bot.GetConfig()
	if cfg.LogChannelID == "" {
		return
	}

	stats := s.bot.GetEngine().Stats()
	tracked, err := s.bot.GetEngine().Ledger().TrackedUsers("")
	if err != nil {
		log.Printf("Failed to count tracked users for daily report: %v", err)
	}

	embed := &discordgo.MessageEmbed{
		Title: "Daily Threat Report",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Messages Processed", Value: fmt.Sprintf("%d", stats.MessagesProcessed), Inline: true},
			{Name: "Threats Detected", Value: fmt.Sprintf("%d", stats.ThreatsDetected), Inline: true},
			{Name: "Actions Taken", Value: fmt.Sprintf("%d", stats.ActionsTaken), Inline: true},
			{Name: "Raids Detected", Value: fmt.Sprintf("%d", stats.RaidsDetected), Inline: true},
			{Name: "Degraded Events", Value: fmt.Sprintf("%d", stats.DegradedEvents), Inline: true},
			{Name: "Tracked Users", Value: fmt.Sprintf("%d", tracked), Inline: true},
		},
	}
	if _, err := s.bot.GetSession().ChannelMessageSendEmbed(cfg.LogChannelID, embed); err != nil {
		log.Printf("Failed to send daily report: %v", err)
	}
}
