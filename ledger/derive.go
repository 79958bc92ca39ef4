package ledger

import (
	"encoding/json"
	"strconv"
	"time"

	"sentinel-bot/model"
	"sentinel-bot/utils"
)

// derive recomputes the tier, risk level and reputation of a profile in
// place. These fields are never written by any other path.
func (l *Ledger) derive(p *model.UserProfile) {
	p.Tier = l.deriveTier(p)
	p.RiskLevel = l.deriveRiskLevel(p)
	p.ReputationScore = deriveReputation(p)
}

// deriveReputation scores community standing from a neutral 50 base: a
// small activity bonus capped at 10, minus 3 points per recorded violation.
func deriveReputation(p *model.UserProfile) float64 {
	rep := 50.0
	if p.TotalMessages > 0 {
		bonus := float64(p.TotalMessages) * 0.05
		if bonus > 10 {
			bonus = 10
		}
		rep += bonus
	}
	rep -= float64(p.TotalViolations) * 3
	if rep < 0 {
		rep = 0
	}
	if rep > 100 {
		rep = 100
	}
	return rep
}

// deriveTier maps account age to a base tier, then applies the upgrade
// overrides in priority order: MODERATOR, TRUSTED, VIP.
func (l *Ledger) deriveTier(p *model.UserProfile) string {
	if p.Moderator {
		return model.TierModerator
	}
	if p.TrustScore >= 85 && p.TotalMessages >= 100 {
		return model.TierTrusted
	}
	if p.Verified && p.TrustScore >= 70 {
		return model.TierVIP
	}

	ageDays := accountAgeDays(p)
	switch {
	case ageDays < 30:
		return model.TierNewcomer
	case ageDays < 90:
		return model.TierMember
	case ageDays < 365:
		return model.TierRegular
	default:
		return model.TierVeteran
	}
}

// deriveRiskLevel computes the weighted user risk score and maps it to a
// band: trust deficit x0.4, sanction penalty capped at 0.5, behavioral
// penalty capped at 0.3, inactivity penalty 0.1.
func (l *Ledger) deriveRiskLevel(p *model.UserProfile) string {
	score := (1 - p.TrustScore/100) * 0.4

	sanctions := p.WarningCount + p.MuteCount + p.KickCount + p.BanCount + p.TimeoutCount
	sanctionPenalty := float64(sanctions) * 0.1
	if sanctionPenalty > 0.5 {
		sanctionPenalty = 0.5
	}
	score += sanctionPenalty

	score += l.behaviorPenalty(p)

	idleDays := float64(time.Now().Unix()-p.LastActivity) / 86400
	if idleDays > float64(l.cfg.InactiveDays) {
		score += 0.1
	}

	switch {
	case score < 0.2:
		return model.RiskVeryLow
	case score < 0.4:
		return model.RiskLow
	case score < 0.6:
		return model.RiskMedium
	case score < 0.8:
		return model.RiskHigh
	case score < 0.95:
		return model.RiskVeryHigh
	default:
		return model.RiskCritical
	}
}

// behaviorPenalty scores behavioral patterns from persisted aggregates:
// night-hour activity share, violation density, and very low trust.
func (l *Ledger) behaviorPenalty(p *model.UserProfile) float64 {
	penalty := 0.0

	if nightRatio(p.ActiveHours) > 0.3 {
		penalty += 0.1
	}
	if p.TotalMessages > 0 && float64(p.TotalViolations)/float64(p.TotalMessages) > 0.1 {
		penalty += 0.1
	}
	if p.TrustScore < 30 {
		penalty += 0.1
	}

	if penalty > 0.3 {
		penalty = 0.3
	}
	return penalty
}

// nightRatio returns the share of messages posted between 02:00 and 06:00.
func nightRatio(histogram string) float64 {
	counts := make(map[string]int)
	if json.Unmarshal([]byte(histogram), &counts) != nil {
		return 0
	}
	total, night := 0, 0
	for hourStr, n := range counts {
		hour, err := strconv.Atoi(hourStr)
		if err != nil {
			continue
		}
		total += n
		if hour >= 2 && hour < 6 {
			night += n
		}
	}
	if total == 0 {
		return 0
	}
	return float64(night) / float64(total)
}

// accountAgeDays prefers the creation time embedded in the snowflake ID
// and falls back to first-seen for non-snowflake IDs.
func accountAgeDays(p *model.UserProfile) float64 {
	created := utils.SnowflakeTime(p.UserID)
	if created.IsZero() || created.Year() < 2015 {
		created = time.Unix(p.FirstSeen, 0)
	}
	return time.Since(created).Hours() / 24
}
