package behavior

import (
	"fmt"
	"sync"
	"time"

	"sentinel-bot/model"
)

// RaidDetector keeps one sliding join window per guild plus a separate
// mass-message burst window. Calls for the same guild are serialized;
// different guilds run in parallel.
type RaidDetector struct {
	cfg    model.RaidConfig
	mu     sync.Mutex
	guilds map[string]*guildWindow
}

type guildWindow struct {
	mu     sync.Mutex
	joins  *ring[time.Time]
	bursts *ring[time.Time]
}

func NewRaidDetector(cfg model.RaidConfig) *RaidDetector {
	return &RaidDetector{
		cfg:    cfg,
		guilds: make(map[string]*guildWindow),
	}
}

func (r *RaidDetector) window(guildID string) *guildWindow {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.guilds[guildID]
	if !ok {
		w = &guildWindow{
			joins:  newRing[time.Time](r.cfg.WindowCap),
			bursts: newRing[time.Time](r.cfg.BurstCap),
		}
		r.guilds[guildID] = w
	}
	return w
}

// OnJoin records one join and reports whether the guild is under a join
// raid: JoinThreshold or more joins within WindowSecs of the new join.
func (r *RaidDetector) OnJoin(guildID string, at time.Time) model.RaidSignal {
	w := r.window(guildID)
	w.mu.Lock()
	defer w.mu.Unlock()

	w.joins.Push(at)
	cutoff := at.Add(-time.Duration(r.cfg.WindowSecs) * time.Second)
	recent := 0
	for _, t := range w.joins.Values() {
		if !t.Before(cutoff) {
			recent++
		}
	}

	return model.RaidSignal{
		IsRaid:      recent >= r.cfg.JoinThreshold,
		RecentJoins: recent,
		Threshold:   r.cfg.JoinThreshold,
		WindowSecs:  r.cfg.WindowSecs,
		GuildID:     guildID,
	}
}

// OnMessage records one message into the guild burst window and returns a
// finding when the flood threshold is crossed.
func (r *RaidDetector) OnMessage(guildID string, at time.Time) []model.Finding {
	w := r.window(guildID)
	w.mu.Lock()
	defer w.mu.Unlock()

	w.bursts.Push(at)
	cutoff := at.Add(-time.Duration(r.cfg.BurstWindowSecs) * time.Second)
	recent := 0
	for _, t := range w.bursts.Values() {
		if !t.Before(cutoff) {
			recent++
		}
	}
	if recent >= r.cfg.BurstThreshold {
		return []model.Finding{{
			Type:     model.FindingMessageBurst,
			Severity: model.SeverityMedium,
			Weight:   0.6,
			Detail:   fmt.Sprintf("%d guild messages in %ds", recent, r.cfg.BurstWindowSecs),
		}}
	}
	return nil
}
