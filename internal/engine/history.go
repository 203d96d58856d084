package engine

import "slices"

// RoundInfo is a completed round as presented in the history tables.
// Table, GuessTable and EnemyTable have one slot per secret word; a slot
// holds the clue given for that word or nil.
type RoundInfo struct {
	Key        []int     `json:"key,omitempty"`
	ClueGiver  string    `json:"clueGiver"`
	Clues      []string  `json:"clues"`
	EnemyGuess []int     `json:"enemyGuess"`
	TeamGuess  []int     `json:"teamGuess"`
	Table      []*string `json:"table,omitempty"`
	GuessTable []*string `json:"guessTable,omitempty"`
	EnemyTable []*string `json:"enemyTable,omitempty"`
	TeamWrong  bool      `json:"teamWrong"`
	EnemyRight bool      `json:"enemyRight"`
}

// History is the view one team gets of both teams' completed rounds,
// oldest first.
type History struct {
	Team  []RoundInfo `json:"team"`
	Enemy []RoundInfo `json:"enemy"`
}

// BuildHistory returns the history shown to members of team. The enemy side
// carries clues, guesses and correctness flags but not the enemy key or the
// key-indexed table.
func BuildHistory(g Game, team int) History {
	return History{
		Team:  completedRounds(g.Teams[team], true),
		Enemy: completedRounds(g.Teams[1-team], false),
	}
}

func completedRounds(t Team, own bool) []RoundInfo {
	if len(t.Rounds) < 2 {
		return []RoundInfo{}
	}
	done := t.Rounds[1:]
	out := make([]RoundInfo, 0, len(done))
	for i := len(done) - 1; i >= 0; i-- {
		out = append(out, buildRoundInfo(done[i], own))
	}
	return out
}

func buildRoundInfo(r Round, own bool) RoundInfo {
	info := RoundInfo{
		ClueGiver:  r.ClueGiver,
		Clues:      slices.Clone(r.Clues),
		EnemyGuess: slices.Clone(r.EnemyGuess),
		TeamGuess:  slices.Clone(r.TeamGuess),
		TeamWrong:  !slices.Equal(r.Key, r.TeamGuess),
		EnemyRight: slices.Equal(r.Key, r.EnemyGuess),
	}
	if info.TeamWrong {
		info.GuessTable = MakeTable(r.TeamGuess, r.Clues)
	}
	if !info.EnemyRight && len(r.EnemyGuess) > 0 {
		info.EnemyTable = MakeTable(r.EnemyGuess, r.Clues)
	}
	if own {
		info.Key = slices.Clone(r.Key)
		info.Table = MakeTable(r.Key, r.Clues)
	}
	return info
}

// MakeTable places clue k in the slot named by key[k]. Empty clues and
// out-of-range digits leave their slot nil.
func MakeTable(key []int, clues []string) []*string {
	table := make([]*string, NumWords)
	for k, slot := range key {
		if k >= len(clues) || slot < 0 || slot >= NumWords || clues[k] == "" {
			continue
		}
		clue := clues[k]
		table[slot] = &clue
	}
	return table
}
