package engine

import "slices"

// MyStatus names the action a player is expected to take next.
type MyStatus string

const (
	StatusWaiting    MyStatus = "waiting"
	StatusClues      MyStatus = "clues"
	StatusTeamGuess  MyStatus = "teamGuess"
	StatusEnemyGuess MyStatus = "enemyGuess"
	StatusLateJoin   MyStatus = "lateJoin"
)

// Status is what a single player is allowed to see of a game.
type Status struct {
	Phase      Phase    `json:"phase"`
	ActiveTeam int      `json:"activeTeam"`
	MyTeam     int      `json:"myTeam"`
	MyStatus   MyStatus `json:"myStatus"`
	Words      []string `json:"words,omitempty"`
	OurClues   []string `json:"ourClues,omitempty"`
	TheirClues []string `json:"theirClues,omitempty"`
	TheirGuess []int    `json:"theirGuess,omitempty"`
	Key        []int    `json:"key,omitempty"`
	CanStart   *bool    `json:"canStart,omitempty"`
	Scores     [2]Score `json:"scores"`
	TeamSizes  [2]int   `json:"teamSizes"`
}

// ProjectStatus builds the status visible to username. Only the current
// clue giver of a team receives that team's key.
func ProjectStatus(g Game, username string) Status {
	s := Status{
		Phase:      g.Phase,
		ActiveTeam: g.ActiveTeam,
		MyTeam:     g.TeamOf(username),
		MyStatus:   StatusWaiting,
		Scores:     [2]Score{g.Teams[0].Score, g.Teams[1].Score},
		TeamSizes:  [2]int{len(g.Teams[0].Players), len(g.Teams[1].Players)},
	}
	if g.Phase == PhasePreStart {
		canStart := g.CanStart()
		s.CanStart = &canStart
	}
	if s.MyTeam == -1 {
		if g.Phase != PhasePreStart {
			s.MyStatus = StatusLateJoin
		}
		return s
	}

	team := g.Teams[s.MyTeam]
	s.Words = slices.Clone(team.Words)
	if ours, ok := g.CurrentRound(s.MyTeam); ok {
		s.OurClues = slices.Clone(ours.Clues)
		s.TheirGuess = slices.Clone(ours.EnemyGuess)
	}
	if theirs, ok := g.CurrentRound(1 - s.MyTeam); ok {
		s.TheirClues = slices.Clone(theirs.Clues)
	}

	giver := g.IsClueGiver(username)
	if giver {
		s.Key = slices.Clone(team.Rounds[0].Key)
	}
	s.MyStatus = requiredAction(g.Phase, s.MyTeam == g.ActiveTeam, giver)
	return s
}

func requiredAction(phase Phase, ownTeamActive, clueGiver bool) MyStatus {
	switch {
	case phase == PhaseMakeClues && ownTeamActive && clueGiver:
		return StatusClues
	case phase == PhaseTeamGuess && ownTeamActive && !clueGiver:
		return StatusTeamGuess
	case phase == PhaseEnemyGuess && !ownTeamActive:
		return StatusEnemyGuess
	default:
		return StatusWaiting
	}
}
