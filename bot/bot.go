package bot

import (
	"log"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"

	"sentinel-bot/commands"
	"sentinel-bot/engine"
	"sentinel-bot/model"
)

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	Engine             *engine.Engine
	DB                 *sqlx.DB
	config             atomic.Value // *model.Config
	scheduler          *Scheduler
	done               chan struct{}
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func (b *Bot) GetEngine() *engine.Engine {
	return b.Engine
}

func New(cfg *model.Config, db *sqlx.DB, eng *engine.Engine) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent | discordgo.IntentsGuildMembers
	dg.StateEnabled = true

	b := &Bot{
		Session: dg,
		Engine:  eng,
		DB:      db,
		done:    make(chan struct{}),
	}
	b.config.Store(cfg)
	b.scheduler = NewScheduler(b)
	return b, nil
}

func (b *Bot) GetScheduler() *Scheduler {
	return b.scheduler
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	close(b.done)
	b.scheduler.Stop()
	b.Session.Close()
	if b.DB != nil {
		b.DB.Close()
	}
}

// RefreshCommands overwrites the global application commands.
func (b *Bot) RefreshCommands() {
	cmds := commands.Generate()
	log.Printf("Registering %d application commands...", len(cmds))
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.GetConfig().AppID, "", cmds)
	if err != nil {
		log.Printf("cannot register application commands: %v", err)
		return
	}
	b.RegisteredCommands = registered
}
