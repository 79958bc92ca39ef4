package handlers

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"sentinel-bot/bot"
)

func SystemInfoHandler(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	cpuCount, _ := cpu.Counts(true)
	cpuPercent, _ := cpu.Percent(0, false)
	vm, _ := mem.VirtualMemory()
	hostInfo, _ := host.Info()

	var dbSize int64
	if fi, err := os.Stat(b.GetConfig().DBPath); err == nil {
		dbSize = fi.Size() / 1024 / 1024
	}

	cpuUsage := 0.0
	if len(cpuPercent) > 0 {
		cpuUsage = cpuPercent[0]
	}

	stats := b.Engine.Stats()

	embed := &discordgo.MessageEmbed{
		Title: "System Info",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "OS", Value: fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion), Inline: true},
			{Name: "Kernel", Value: hostInfo.KernelVersion, Inline: true},
			{Name: "Go Version", Value: runtime.Version(), Inline: true},
			{Name: "CPU Count", Value: fmt.Sprintf("%d", cpuCount), Inline: true},
			{Name: "CPU Usage", Value: fmt.Sprintf("%.1f%%", cpuUsage), Inline: true},
			{Name: "Memory", Value: fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024), Inline: true},
			{Name: "Database Size", Value: fmt.Sprintf("%d MB", dbSize), Inline: true},
			{Name: "WebSocket Latency", Value: s.HeartbeatLatency().String(), Inline: true},
			{Name: "Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "Guilds", Value: fmt.Sprintf("%d", len(s.State.Guilds)), Inline: true},
			{Name: "Messages Processed", Value: fmt.Sprintf("%d", stats.MessagesProcessed), Inline: true},
			{Name: "Actions Taken", Value: fmt.Sprintf("%d", stats.ActionsTaken), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("System monitor, %s", time.Now().Format("15:04")),
		},
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.Printf("Error sending system info: %v", err)
	}
}
