package engine

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"
)

type Phase string

const (
	PhasePreStart   Phase = "preStart"
	PhaseMakeClues  Phase = "makeClues"
	PhaseEnemyGuess Phase = "enemyGuess"
	PhaseTeamGuess  Phase = "teamGuess"
)

// MinTeamSize is the number of members each team needs before a start.
const MinTeamSize = 2

// Round is one code/clue/guess cycle of a single team.
type Round struct {
	Key        []int    `json:"key"`
	ClueGiver  string   `json:"clueGiver"`
	Clues      []string `json:"clues"`
	EnemyGuess []int    `json:"enemyGuess"`
	TeamGuess  []int    `json:"teamGuess"`
}

// Score counts how often a team intercepted the other team's code and how
// often it failed to decode its own.
type Score struct {
	Interceptions     int `json:"interceptions"`
	Miscommunications int `json:"miscommunications"`
}

// Team is one side of a game. Rounds are ordered most recent first; Rounds[0]
// is the round in progress once the game has started.
type Team struct {
	Players []string `json:"players"`
	Words   []string `json:"words"`
	KeyDeck []int    `json:"keyDeck"`
	RoundNo int      `json:"roundNo"`
	Rounds  []Round  `json:"rounds"`
	Score   Score    `json:"score"`
}

type Game struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Phase      Phase     `json:"phase"`
	ActiveTeam int       `json:"activeTeam"`
	Teams      [2]Team   `json:"teams"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewGame builds a game in PreStart. words must hold at least 2*NumWords
// distinct entries; the first NumWords go to team 0, the next to team 1.
func NewGame(id, name string, words []string, rng *rand.Rand, now time.Time) (Game, error) {
	if len(words) < 2*NumWords {
		return Game{}, fmt.Errorf("%w: need %d, got %d", ErrNotEnoughWords, 2*NumWords, len(words))
	}
	g := Game{
		ID:        id,
		Name:      name,
		Phase:     PhasePreStart,
		CreatedAt: now,
	}
	for t := range g.Teams {
		g.Teams[t] = Team{
			Players: []string{},
			Words:   slices.Clone(words[t*NumWords : (t+1)*NumWords]),
			KeyDeck: NewKeyDeck(rng),
			Rounds:  []Round{},
		}
	}
	return g, nil
}

// Clone returns a deep copy that shares no slices with g.
func (g Game) Clone() Game {
	out := g
	for t := range g.Teams {
		out.Teams[t] = g.Teams[t].clone()
	}
	return out
}

func (t Team) clone() Team {
	out := t
	out.Players = slices.Clone(t.Players)
	out.Words = slices.Clone(t.Words)
	out.KeyDeck = slices.Clone(t.KeyDeck)
	out.Rounds = make([]Round, len(t.Rounds))
	for i, r := range t.Rounds {
		out.Rounds[i] = r.clone()
	}
	return out
}

func (r Round) clone() Round {
	return Round{
		Key:        slices.Clone(r.Key),
		ClueGiver:  r.ClueGiver,
		Clues:      slices.Clone(r.Clues),
		EnemyGuess: slices.Clone(r.EnemyGuess),
		TeamGuess:  slices.Clone(r.TeamGuess),
	}
}

// TeamOf returns the team index of username, or -1 if it is not a member.
func (g Game) TeamOf(username string) int {
	for t := range g.Teams {
		if slices.Contains(g.Teams[t].Players, username) {
			return t
		}
	}
	return -1
}

// CurrentRound returns the round in progress for a team.
func (g Game) CurrentRound(team int) (Round, bool) {
	if team < 0 || team >= len(g.Teams) || len(g.Teams[team].Rounds) == 0 {
		return Round{}, false
	}
	return g.Teams[team].Rounds[0], true
}

// IsClueGiver reports whether username gives clues for its team's current round.
func (g Game) IsClueGiver(username string) bool {
	if g.Phase == PhasePreStart {
		return false
	}
	r, ok := g.CurrentRound(g.TeamOf(username))
	return ok && r.ClueGiver == username
}

// CanStart reports whether both teams have enough members.
func (g Game) CanStart() bool {
	return len(g.Teams[0].Players) >= MinTeamSize && len(g.Teams[1].Players) >= MinTeamSize
}

func (g Game) smallerTeam() int {
	if len(g.Teams[0].Players) > len(g.Teams[1].Players) {
		return 1
	}
	return 0
}

func nextPlayer(players []string, current string) string {
	if len(players) == 0 {
		return ""
	}
	i := slices.Index(players, current)
	return players[(i+1)%len(players)]
}

func validTeam(team int) bool {
	return team == 0 || team == 1
}
