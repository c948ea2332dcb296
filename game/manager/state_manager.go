package manager

import (
	"sort"
	"sync"
	"time"

	"gridsnake/game/types"
)

// maxHistory caps how many finished games a Scoreboard remembers.
const maxHistory = 50

// GameRecord is the outcome of one finished game.
type GameRecord struct {
	ID        string              `json:"id"`
	Score     int                 `json:"score"`
	Length    int                 `json:"length"`
	Ticks     uint64              `json:"ticks"`
	Cause     types.CollisionType `json:"cause"`
	StartTime time.Time           `json:"startTime"`
	EndTime   time.Time           `json:"endTime"`
}

// Duration is the wall-clock time the game ran.
func (r GameRecord) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Summary aggregates the scoreboard for display.
type Summary struct {
	GamesPlayed     int          `json:"gamesPlayed"`
	HighScore       int          `json:"highScore"`
	AverageScore    float64      `json:"averageScore"`
	MedianScore     float64      `json:"medianScore"`
	AverageDuration float64      `json:"averageDurationSeconds"`
	Last            *GameRecord  `json:"last,omitempty"`
	History         []GameRecord `json:"history"`
}

// Scoreboard keeps per-process results of finished games in memory.
// Nothing is written to disk.
type Scoreboard struct {
	mu          sync.RWMutex
	history     []GameRecord
	gamesPlayed int
	highScore   int
}

func NewScoreboard() *Scoreboard {
	return &Scoreboard{
		history: make([]GameRecord, 0),
	}
}

// Record adds a finished game. Only the newest maxHistory records are kept,
// but the high score and game count cover every game recorded.
func (sb *Scoreboard) Record(r GameRecord) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if len(sb.history) >= maxHistory {
		sb.history = sb.history[1:]
	}
	sb.history = append(sb.history, r)
	sb.gamesPlayed++
	if r.Score > sb.highScore {
		sb.highScore = r.Score
	}
}

func (sb *Scoreboard) GetHighScore() int {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.highScore
}

func (sb *Scoreboard) GamesPlayed() int {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.gamesPlayed
}

// Summary computes averages over the retained history.
func (sb *Scoreboard) Summary() Summary {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	s := Summary{
		GamesPlayed: sb.gamesPlayed,
		HighScore:   sb.highScore,
		History:     make([]GameRecord, len(sb.history)),
	}
	copy(s.History, sb.history)
	if len(sb.history) == 0 {
		return s
	}

	last := sb.history[len(sb.history)-1]
	s.Last = &last

	scores := make([]int, len(sb.history))
	var totalScore int
	var totalDuration float64
	for i, r := range sb.history {
		scores[i] = r.Score
		totalScore += r.Score
		totalDuration += r.Duration().Seconds()
	}
	s.AverageScore = float64(totalScore) / float64(len(scores))
	s.AverageDuration = totalDuration / float64(len(scores))

	sort.Ints(scores)
	mid := len(scores) / 2
	if len(scores)%2 == 0 {
		s.MedianScore = float64(scores[mid-1]+scores[mid]) / 2
	} else {
		s.MedianScore = float64(scores[mid])
	}
	return s
}
