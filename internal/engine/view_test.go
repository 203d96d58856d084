package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectStatus_PreStart(t *testing.T) {
	g := seatedGame(t)

	s := ProjectStatus(g, "A")
	require.NotNil(t, s.CanStart)
	assert.True(t, *s.CanStart)
	assert.Equal(t, StatusWaiting, s.MyStatus)
	assert.Equal(t, g.Teams[0].Words, s.Words)
	assert.Nil(t, s.Key)

	g.Teams[1].Players = []string{"C"}
	s = ProjectStatus(g, "C")
	require.NotNil(t, s.CanStart)
	assert.False(t, *s.CanStart)
	assert.Equal(t, g.Teams[1].Words, s.Words)
}

func TestProjectStatus_OnlyClueGiverSeesKey(t *testing.T) {
	g := startedGame(t)

	giver := ProjectStatus(g, "A")
	assert.Equal(t, g.Teams[0].Rounds[0].Key, giver.Key)
	assert.Nil(t, giver.CanStart)

	for _, p := range []string{"B", "D"} {
		s := ProjectStatus(g, p)
		assert.Nil(t, s.Key, "player %s sees a key", p)

		raw, err := json.Marshal(s)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), `"key"`)
	}

	// The inactive team's giver sees its own pending key, never the other one.
	other := ProjectStatus(g, "C")
	assert.Equal(t, g.Teams[1].Rounds[0].Key, other.Key)
}

func TestProjectStatus_PublicCluesAndGuess(t *testing.T) {
	g := startedGame(t)
	g, _ = mustApply(t, g, "A", SendClue{Clues: []string{"RIVER", "GOLD", "SALT"}})
	g, _ = mustApply(t, g, "C", SendEnemyGuess{Guess: []int{2, 1, 0}})

	ours := ProjectStatus(g, "B")
	assert.Equal(t, []string{"RIVER", "GOLD", "SALT"}, ours.OurClues)
	assert.Equal(t, []int{2, 1, 0}, ours.TheirGuess)
	assert.Empty(t, ours.TheirClues)

	theirs := ProjectStatus(g, "D")
	assert.Equal(t, []string{"RIVER", "GOLD", "SALT"}, theirs.TheirClues)
	assert.Equal(t, g.Teams[1].Words, theirs.Words)
	assert.NotContains(t, theirs.Words, g.Teams[0].Words[0])
}

func TestProjectStatus_NonMember(t *testing.T) {
	pre := ProjectStatus(seatedGame(t), "Z")
	assert.Equal(t, -1, pre.MyTeam)
	assert.Equal(t, StatusWaiting, pre.MyStatus)
	assert.Nil(t, pre.Words)

	started := ProjectStatus(startedGame(t), "Z")
	assert.Equal(t, StatusLateJoin, started.MyStatus)
	assert.Equal(t, [2]int{2, 2}, started.TeamSizes)
	assert.Nil(t, started.Words)
	assert.Nil(t, started.Key)
}

func TestRequiredAction(t *testing.T) {
	cases := []struct {
		phase     Phase
		ownActive bool
		giver     bool
		want      MyStatus
	}{
		{PhaseMakeClues, true, true, StatusClues},
		{PhaseMakeClues, true, false, StatusWaiting},
		{PhaseMakeClues, false, true, StatusWaiting},
		{PhaseEnemyGuess, false, false, StatusEnemyGuess},
		{PhaseEnemyGuess, false, true, StatusEnemyGuess},
		{PhaseEnemyGuess, true, false, StatusWaiting},
		{PhaseTeamGuess, true, false, StatusTeamGuess},
		{PhaseTeamGuess, true, true, StatusWaiting},
		{PhaseTeamGuess, false, false, StatusWaiting},
		{PhasePreStart, true, false, StatusWaiting},
	}

	for _, tc := range cases {
		got := requiredAction(tc.phase, tc.ownActive, tc.giver)
		assert.Equal(t, tc.want, got, "%s active=%v giver=%v", tc.phase, tc.ownActive, tc.giver)
	}
}

// Whenever a player is told to act, the state machine must accept that action.
func TestProjectStatus_AgreesWithApply(t *testing.T) {
	g := startedGame(t)
	players := []string{"A", "B", "C", "D"}

	for step := 0; step < 12; step++ {
		acted := false
		for _, p := range players {
			s := ProjectStatus(g, p)
			var cmd Command
			switch s.MyStatus {
			case StatusClues:
				cmd = SendClue{Clues: []string{"a", "b", "c"}}
			case StatusEnemyGuess:
				cmd = SendEnemyGuess{Guess: []int{0, 1, 2}}
			case StatusTeamGuess:
				cmd = SendTeamGuess{Guess: []int{0, 1, 2}}
			default:
				continue
			}
			_, _, err := Apply(g, p, cmd)
			require.NoError(t, err, "step %d: %s told %s", step, p, s.MyStatus)
			if !acted {
				g, _ = mustApply(t, g, p, cmd)
				acted = true
			}
		}
		require.True(t, acted, "step %d: nobody was told to act in %s", step, g.Phase)
	}
}
