package handlers

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"sentinel-bot/bot"
	"sentinel-bot/utils"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

// requireAdmin wraps a command handler with a permission check against
// the configured admin roles and developer IDs.
func requireAdmin(b *bot.Bot, h func(s *discordgo.Session, i *discordgo.InteractionCreate)) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		cfg := b.GetConfig()
		var roleIDs []string
		var userID string
		if i.Member != nil {
			roleIDs = i.Member.Roles
			userID = i.Member.User.ID
		} else if i.User != nil {
			userID = i.User.ID
		}
		level := utils.CheckPermission(userID, roleIDs, cfg.AdminRoleIDs, cfg.DeveloperUserIDs)
		if level == utils.GuestPermission {
			utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
			return
		}
		h(s, i)
	}
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"user-risk": requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleUserRisk(s, i, b)
		}),
		"threat-stats": requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleThreatStats(s, i, b)
		}),
		"system-info": requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			SystemInfoHandler(s, i, b)
		}),
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		HandleMessageCreate(s, m, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		HandleMemberJoin(s, m, b)
	})
}
