package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sentinel-bot/utils"
)

func (b *Bot) Run() {
	err := b.Session.Open()
	if err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	b.RefreshCommands()

	b.GetScheduler().Start()

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	utils.LogInfo(b.GetConfig().LogWebhookURL, "System", "Startup", "Threat engine is online.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}
