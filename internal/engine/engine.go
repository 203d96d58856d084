package engine

import (
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
)

var ErrWrongPhase = errors.New("wrong phase")
var ErrWrongTeam = errors.New("wrong team")
var ErrNotClueGiver = errors.New("not the clue giver")
var ErrNotEnoughPlayers = errors.New("not enough players")
var ErrNotMember = errors.New("player is not in the game")
var ErrAlreadyMember = errors.New("player already in the game")
var ErrLateJoinRequired = errors.New("game already started, late join required")
var ErrInvalidTeam = errors.New("invalid team")
var ErrMalformedGuess = errors.New("malformed guess")
var ErrMalformedClues = errors.New("malformed clues")
var ErrNotEnoughWords = errors.New("not enough words")
var ErrUnsupportedCommand = errors.New("unsupported command")

// Command is an inbound player action. The set of commands is closed.
type Command interface{ isCommand() }

// Join attaches a player to the game. Unknown players are seated only in
// PreStart; afterwards they must use LateJoin.
type Join struct{}

type Start struct{}

// SendClue carries at most KeyLength clue words, one per code digit in order.
// An empty word or "-" leaves that digit un-clued.
type SendClue struct {
	Clues []string
}

type SendEnemyGuess struct {
	Guess []int
}

type SendTeamGuess struct {
	Guess []int
}

// LateJoin seats a new player after the start. A nil Team picks the smaller one.
type LateJoin struct {
	Team *int
}

type ChangeTeam struct {
	Team int
}

// ShuffleTeams redistributes every member. Seed makes the split reproducible.
type ShuffleTeams struct {
	Seed uint64
}

func (Join) isCommand()           {}
func (Start) isCommand()          {}
func (SendClue) isCommand()       {}
func (SendEnemyGuess) isCommand() {}
func (SendTeamGuess) isCommand()  {}
func (LateJoin) isCommand()       {}
func (ChangeTeam) isCommand()     {}
func (ShuffleTeams) isCommand()   {}

type EventType string

const (
	EvtPlayerJoined  EventType = "PlayerJoined"
	EvtTeamsChanged  EventType = "TeamsChanged"
	EvtGameStarted   EventType = "GameStarted"
	EvtCluesSent     EventType = "CluesSent"
	EvtEnemyGuessed  EventType = "EnemyGuessed"
	EvtTeamGuessed   EventType = "TeamGuessed"
	EvtRoundAdvanced EventType = "RoundAdvanced"
)

type Event struct {
	Type   EventType
	Team   int
	Player string
}

// Apply validates cmd from player against g and returns the resulting events
// and state. g is never modified; on error the returned state is g itself.
func Apply(g Game, player string, cmd Command) ([]Event, Game, error) {
	switch c := cmd.(type) {
	case Join:
		return applyJoin(g, player)
	case Start:
		return applyStart(g, player)
	case SendClue:
		return applySendClue(g, player, c)
	case SendEnemyGuess:
		return applyEnemyGuess(g, player, c)
	case SendTeamGuess:
		return applyTeamGuess(g, player, c)
	case LateJoin:
		return applyLateJoin(g, player, c)
	case ChangeTeam:
		return applyChangeTeam(g, player, c)
	case ShuffleTeams:
		return applyShuffle(g, player, c)
	default:
		return nil, g, ErrUnsupportedCommand
	}
}

func applyJoin(g Game, player string) ([]Event, Game, error) {
	if g.TeamOf(player) != -1 {
		// Reconnect: membership is unchanged.
		return nil, g, nil
	}
	if g.Phase != PhasePreStart {
		return nil, g, ErrLateJoinRequired
	}
	team := g.smallerTeam()
	next := g.Clone()
	next.Teams[team].Players = append(next.Teams[team].Players, player)
	return []Event{{Type: EvtPlayerJoined, Team: team, Player: player}}, next, nil
}

func applyStart(g Game, player string) ([]Event, Game, error) {
	if g.Phase != PhasePreStart {
		return nil, g, ErrWrongPhase
	}
	if g.TeamOf(player) == -1 {
		return nil, g, ErrNotMember
	}
	if !g.CanStart() {
		return nil, g, ErrNotEnoughPlayers
	}

	next := g.Clone()
	for t := range next.Teams {
		team := &next.Teams[t]
		team.RoundNo = 0
		team.Rounds = []Round{newRound(keyForRound(team.KeyDeck, 0), team.Players[0])}
	}
	next.ActiveTeam = 0
	next.Phase = PhaseMakeClues
	return []Event{{Type: EvtGameStarted, Player: player}}, next, nil
}

func applySendClue(g Game, player string, cmd SendClue) ([]Event, Game, error) {
	clues, err := normalizeClues(cmd.Clues)
	if err != nil {
		return nil, g, err
	}
	if g.Phase != PhaseMakeClues {
		return nil, g, ErrWrongPhase
	}
	team := g.TeamOf(player)
	if team == -1 {
		return nil, g, ErrNotMember
	}
	if team != g.ActiveTeam {
		return nil, g, ErrWrongTeam
	}
	if g.Teams[team].Rounds[0].ClueGiver != player {
		return nil, g, ErrNotClueGiver
	}

	next := g.Clone()
	next.Teams[team].Rounds[0].Clues = clues
	next.Phase = PhaseEnemyGuess
	return []Event{{Type: EvtCluesSent, Team: team, Player: player}}, next, nil
}

func applyEnemyGuess(g Game, player string, cmd SendEnemyGuess) ([]Event, Game, error) {
	if err := validateGuess(cmd.Guess); err != nil {
		return nil, g, err
	}
	if g.Phase != PhaseEnemyGuess {
		return nil, g, ErrWrongPhase
	}
	team := g.TeamOf(player)
	if team == -1 {
		return nil, g, ErrNotMember
	}
	if team == g.ActiveTeam {
		return nil, g, ErrWrongTeam
	}

	next := g.Clone()
	next.Teams[g.ActiveTeam].Rounds[0].EnemyGuess = slices.Clone(cmd.Guess)
	next.Phase = PhaseTeamGuess
	return []Event{{Type: EvtEnemyGuessed, Team: team, Player: player}}, next, nil
}

func applyTeamGuess(g Game, player string, cmd SendTeamGuess) ([]Event, Game, error) {
	if err := validateGuess(cmd.Guess); err != nil {
		return nil, g, err
	}
	if g.Phase != PhaseTeamGuess {
		return nil, g, ErrWrongPhase
	}
	team := g.TeamOf(player)
	if team == -1 {
		return nil, g, ErrNotMember
	}
	if team != g.ActiveTeam {
		return nil, g, ErrWrongTeam
	}

	next := g.Clone()
	active := &next.Teams[team]
	current := &active.Rounds[0]
	current.TeamGuess = slices.Clone(cmd.Guess)
	if slices.Equal(current.EnemyGuess, current.Key) {
		next.Teams[1-team].Score.Interceptions++
	}
	if !slices.Equal(current.TeamGuess, current.Key) {
		active.Score.Miscommunications++
	}

	active.RoundNo++
	giver := nextPlayer(active.Players, current.ClueGiver)
	active.Rounds = append([]Round{newRound(keyForRound(active.KeyDeck, active.RoundNo), giver)}, active.Rounds...)
	next.ActiveTeam = 1 - team
	next.Phase = PhaseMakeClues

	events := []Event{
		{Type: EvtTeamGuessed, Team: team, Player: player},
		{Type: EvtRoundAdvanced, Team: team},
	}
	return events, next, nil
}

func applyLateJoin(g Game, player string, cmd LateJoin) ([]Event, Game, error) {
	if g.Phase == PhasePreStart {
		return nil, g, ErrWrongPhase
	}
	if g.TeamOf(player) != -1 {
		return nil, g, ErrAlreadyMember
	}
	team := g.smallerTeam()
	if cmd.Team != nil {
		if !validTeam(*cmd.Team) {
			return nil, g, ErrInvalidTeam
		}
		team = *cmd.Team
	}

	next := g.Clone()
	next.Teams[team].Players = append(next.Teams[team].Players, player)
	return []Event{{Type: EvtPlayerJoined, Team: team, Player: player}}, next, nil
}

func applyChangeTeam(g Game, player string, cmd ChangeTeam) ([]Event, Game, error) {
	if !validTeam(cmd.Team) {
		return nil, g, ErrInvalidTeam
	}
	if g.Phase != PhasePreStart {
		return nil, g, ErrWrongPhase
	}
	from := g.TeamOf(player)
	if from == -1 {
		return nil, g, ErrNotMember
	}
	if from == cmd.Team {
		return nil, g, nil
	}

	next := g.Clone()
	next.Teams[from].Players = slices.DeleteFunc(next.Teams[from].Players, func(p string) bool { return p == player })
	next.Teams[cmd.Team].Players = append(next.Teams[cmd.Team].Players, player)
	return []Event{{Type: EvtTeamsChanged, Team: cmd.Team, Player: player}}, next, nil
}

func applyShuffle(g Game, player string, cmd ShuffleTeams) ([]Event, Game, error) {
	if g.Phase != PhasePreStart {
		return nil, g, ErrWrongPhase
	}
	if g.TeamOf(player) == -1 {
		return nil, g, ErrNotMember
	}

	rng := rand.New(rand.NewPCG(cmd.Seed, cmd.Seed>>1|1))
	players := append(slices.Clone(g.Teams[0].Players), g.Teams[1].Players...)
	rng.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })
	// Odd rosters put the extra player on a random side.
	breakpoint := (len(players) + rng.IntN(2)) / 2

	next := g.Clone()
	next.Teams[0].Players = slices.Clone(players[:breakpoint])
	next.Teams[1].Players = slices.Clone(players[breakpoint:])
	return []Event{{Type: EvtTeamsChanged, Player: player}}, next, nil
}

func newRound(key []int, giver string) Round {
	return Round{
		Key:        key,
		ClueGiver:  giver,
		Clues:      []string{},
		EnemyGuess: []int{},
		TeamGuess:  []int{},
	}
}

const unclued = "-"

func normalizeClues(clues []string) ([]string, error) {
	if len(clues) == 0 || len(clues) > KeyLength {
		return nil, ErrMalformedClues
	}
	out := make([]string, KeyLength)
	for i, c := range clues {
		c = strings.TrimSpace(c)
		if c == unclued {
			c = ""
		}
		out[i] = c
	}
	return out, nil
}

func validateGuess(guess []int) error {
	if len(guess) != KeyLength {
		return ErrMalformedGuess
	}
	seen := make(map[int]bool, KeyLength)
	for _, d := range guess {
		if d < 0 || d >= NumWords || seen[d] {
			return ErrMalformedGuess
		}
		seen[d] = true
	}
	return nil
}
