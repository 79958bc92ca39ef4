package commands

import "github.com/bwmarrin/discordgo"

// Generate returns the application command definitions.
func Generate() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "user-risk",
			Description: "Show the trust profile and recent trust history of a user",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to inspect",
					Required:    true,
				},
			},
		},
		{
			Name:        "threat-stats",
			Description: "Show the threat engine counters",
		},
		{
			Name:        "system-info",
			Description: "Show host and process information",
		},
	}
}
