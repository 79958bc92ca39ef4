package behavior

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"

	"sentinel-bot/model"
)

const (
	timestampWindow  = 50
	lengthWindow     = 30
	typingRateWindow = 20
)

// userState holds one user's bounded behavioral history. The state mutex
// serializes analysis for that user; different users run in parallel.
type userState struct {
	mu              sync.Mutex
	timestamps      *ring[time.Time]
	lengths         *ring[int]
	typingRate      *ring[float64]
	commandUsage    map[string]int
	channelActivity map[string]int
}

func newUserState() *userState {
	return &userState{
		timestamps:      newRing[time.Time](timestampWindow),
		lengths:         newRing[int](lengthWindow),
		typingRate:      newRing[float64](typingRateWindow),
		commandUsage:    make(map[string]int),
		channelActivity: make(map[string]int),
	}
}

// Tracker maintains behavioral state for recently active users. States
// live in a bounded LRU cache so long-running deployments cannot leak
// memory on user churn.
type Tracker struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *userState]
}

// NewTracker creates a tracker bounded to maxUsers states.
func NewTracker(maxUsers int) (*Tracker, error) {
	cache, err := lru.New[string, *userState](maxUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to create behavior cache: %w", err)
	}
	return &Tracker{cache: cache}, nil
}

func (t *Tracker) state(key string) *userState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.cache.Get(key); ok {
		return st
	}
	st := newUserState()
	t.cache.Add(key, st)
	return st
}

// TrackedUsers returns the number of users currently held in the cache.
func (t *Tracker) TrackedUsers() int {
	return t.cache.Len()
}

// RecordMessage appends the event to the user's rolling windows and
// derives anomaly findings from the updated statistics.
func (t *Tracker) RecordMessage(ev model.MessageEvent) []model.Finding {
	st := t.state(ev.GuildID + "/" + ev.UserID)
	st.mu.Lock()
	defer st.mu.Unlock()

	var elapsed time.Duration
	if st.timestamps.Len() > 0 {
		prev := st.timestamps.Values()[st.timestamps.Len()-1]
		elapsed = ev.Timestamp.Sub(prev)
	}

	st.timestamps.Push(ev.Timestamp)
	st.lengths.Push(len([]rune(ev.Content)))
	st.channelActivity[ev.ChannelID]++

	if elapsed > 0 {
		minutes := math.Max(0.1, elapsed.Minutes())
		st.typingRate.Push(float64(keystrokes(ev.Content)) / minutes)
	}

	var findings []model.Finding
	findings = append(findings, st.checkTiming()...)
	findings = append(findings, st.checkLengths()...)
	findings = append(findings, st.checkTypingRate()...)
	findings = append(findings, st.checkCommand(ev.Content)...)
	return findings
}

func (st *userState) checkTiming() []model.Finding {
	ts := st.timestamps.Values()
	if len(ts) < 5 {
		return nil
	}
	intervals := make([]float64, 0, len(ts)-1)
	for i := 1; i < len(ts); i++ {
		intervals = append(intervals, ts[i].Sub(ts[i-1]).Seconds())
	}
	if stdev(intervals) < 0.5 {
		return []model.Finding{{
			Type:     model.FindingBotLikeTiming,
			Severity: model.SeverityMedium,
			Weight:   0.7,
			Detail:   fmt.Sprintf("interval stdev %.3fs over %d messages", stdev(intervals), len(ts)),
		}}
	}
	return nil
}

func (st *userState) checkLengths() []model.Finding {
	lengths := st.lengths.Values()
	var findings []model.Finding

	cur := lengths[len(lengths)-1]
	identical := 0
	for _, l := range lengths {
		if l == cur {
			identical++
		}
	}
	if cur > 0 && identical >= 3 {
		findings = append(findings, model.Finding{
			Type:     model.FindingRepeatedLength,
			Severity: model.SeverityHigh,
			Weight:   0.7,
			Detail:   fmt.Sprintf("length %d repeated %d times", cur, identical),
		})
	}

	if len(lengths) >= 10 {
		vals := make([]float64, len(lengths))
		for i, l := range lengths {
			vals[i] = float64(l)
		}
		if variance(vals) < 10 && mean(vals) > 20 {
			findings = append(findings, model.Finding{
				Type:     model.FindingUniformLength,
				Severity: model.SeverityMedium,
				Weight:   0.6,
				Detail:   fmt.Sprintf("length variance %.1f, mean %.1f", variance(vals), mean(vals)),
			})
		}
	}
	return findings
}

func (st *userState) checkTypingRate() []model.Finding {
	rates := st.typingRate.Values()
	if len(rates) < 10 {
		return nil
	}
	if m := mean(rates); m > 300 {
		return []model.Finding{{
			Type:     model.FindingAbnormalTyping,
			Severity: model.SeverityMedium,
			Weight:   0.6,
			Detail:   fmt.Sprintf("estimated %.0f keystrokes/min", m),
		}}
	}
	return nil
}

func (st *userState) checkCommand(content string) []model.Finding {
	if !strings.HasPrefix(content, "!") && !strings.HasPrefix(content, "/") {
		return nil
	}
	cmd := strings.ToLower(strings.Fields(content)[0])
	st.commandUsage[cmd]++
	if st.commandUsage[cmd] >= 10 {
		return []model.Finding{{
			Type:     model.FindingCommandFlood,
			Severity: model.SeverityLow,
			Weight:   0.3,
			Detail:   fmt.Sprintf("command %s used %d times", cmd, st.commandUsage[cmd]),
		}}
	}
	return nil
}

// keystrokes estimates typing effort; Hangul syllables decompose into
// multiple jamo keystrokes and count double.
func keystrokes(s string) int {
	n := 0
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func variance(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	sum := 0.0
	for _, v := range vals {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(vals))
}

func stdev(vals []float64) float64 {
	return math.Sqrt(variance(vals))
}
