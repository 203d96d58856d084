package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestMakeTable(t *testing.T) {
	table := MakeTable([]int{1, 2, 0}, []string{"RIVER", "GOLD", "SALT"})
	assert.Equal(t, []*string{strp("SALT"), strp("RIVER"), strp("GOLD"), nil}, table)

	unclued := MakeTable([]int{0, 1, 2}, []string{"RIVER", "GOLD", ""})
	assert.Equal(t, []*string{strp("RIVER"), strp("GOLD"), nil, nil}, unclued)
}

func TestBuildRoundInfo_Flags(t *testing.T) {
	cases := []struct {
		name           string
		round          Round
		wantEnemyRight bool
		wantTeamWrong  bool
	}{
		{
			name:           "enemy intercepts",
			round:          Round{Key: []int{1, 2, 0}, Clues: []string{"a", "b", "c"}, EnemyGuess: []int{1, 2, 0}, TeamGuess: []int{1, 2, 0}},
			wantEnemyRight: true,
		},
		{
			name:          "team miscommunicates",
			round:         Round{Key: []int{1, 2, 0}, Clues: []string{"a", "b", "c"}, EnemyGuess: []int{3, 2, 0}, TeamGuess: []int{0, 2, 1}},
			wantTeamWrong: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info := buildRoundInfo(tc.round, true)
			assert.Equal(t, tc.wantEnemyRight, info.EnemyRight)
			assert.Equal(t, tc.wantTeamWrong, info.TeamWrong)
			assert.Equal(t, MakeTable(tc.round.Key, tc.round.Clues), info.Table)
			if tc.wantTeamWrong {
				assert.Equal(t, MakeTable(tc.round.TeamGuess, tc.round.Clues), info.GuessTable)
			} else {
				assert.Nil(t, info.GuessTable)
			}
			if tc.wantEnemyRight {
				assert.Nil(t, info.EnemyTable)
			} else {
				assert.Equal(t, MakeTable(tc.round.EnemyGuess, tc.round.Clues), info.EnemyTable)
			}
		})
	}
}

func TestBuildRoundInfo_MismatchTableFromGuess(t *testing.T) {
	info := buildRoundInfo(Round{
		Key:        []int{1, 2, 0},
		Clues:      []string{"a", "b", "c"},
		EnemyGuess: []int{1, 2, 0},
		TeamGuess:  []int{0, 2, 1},
	}, true)

	assert.True(t, info.TeamWrong)
	assert.Equal(t, []*string{strp("a"), strp("c"), strp("b"), nil}, info.GuessTable)
	assert.Equal(t, []*string{strp("c"), strp("a"), strp("b"), nil}, info.Table)
}

func TestBuildHistory_SkipsRoundInProgress(t *testing.T) {
	g := startedGame(t)
	h := BuildHistory(g, 0)
	assert.Empty(t, h.Team)
	assert.Empty(t, h.Enemy)

	g = playRound(t, g)
	g = playRound(t, g)
	g = playRound(t, g)

	h0 := BuildHistory(g, 0)
	require.Len(t, h0.Team, 2)
	require.Len(t, h0.Enemy, 1)
	assert.Equal(t, "A", h0.Team[0].ClueGiver)
	assert.Equal(t, "B", h0.Team[1].ClueGiver)

	h1 := BuildHistory(g, 1)
	assert.Equal(t, h0.Team[0].Clues, h1.Enemy[0].Clues)
}

func TestBuildHistory_EnemySideHidesKey(t *testing.T) {
	g := playRound(t, startedGame(t))

	own := BuildHistory(g, 0).Team[0]
	mirror := BuildHistory(g, 1).Enemy[0]

	assert.NotNil(t, own.Key)
	assert.NotNil(t, own.Table)
	assert.Nil(t, mirror.Key)
	assert.Nil(t, mirror.Table)
	assert.Equal(t, own.Clues, mirror.Clues)
	assert.Equal(t, own.EnemyGuess, mirror.EnemyGuess)
	assert.Equal(t, own.EnemyRight, mirror.EnemyRight)
}

func TestScenario_RiverGoldMiscommunication(t *testing.T) {
	g := startedGame(t)
	g.Teams[0].Rounds[0].Key = []int{0, 1, 2}

	g, _ = mustApply(t, g, "A", SendClue{Clues: []string{"RIVER", "GOLD", "-"}})
	g, _ = mustApply(t, g, "C", SendEnemyGuess{Guess: []int{3, 1, 0}})
	g, _ = mustApply(t, g, "B", SendTeamGuess{Guess: []int{0, 1, 3}})

	h := BuildHistory(g, 0)
	require.Len(t, h.Team, 1)
	round := h.Team[0]

	assert.True(t, round.TeamWrong)
	assert.False(t, round.EnemyRight)
	assert.Equal(t, []*string{strp("RIVER"), strp("GOLD"), nil, nil}, round.Table)
	assert.Equal(t, []*string{strp("RIVER"), strp("GOLD"), nil, nil}, round.GuessTable)
	assert.Nil(t, round.GuessTable[2])
	assert.Equal(t, 1, g.Teams[0].Score.Miscommunications)
	assert.Equal(t, 0, g.Teams[1].Score.Interceptions)
}
