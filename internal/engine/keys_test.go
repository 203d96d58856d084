package engine

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenKey_KnownRanks(t *testing.T) {
	cases := []struct {
		rank int
		want []int
	}{
		{rank: 0, want: []int{0, 1, 2}},
		{rank: 1, want: []int{1, 0, 2}},
		{rank: 4, want: []int{0, 2, 1}},
		{rank: 12, want: []int{0, 1, 3}},
		{rank: 23, want: []int{3, 2, 1}},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("rank %d", tc.rank), func(t *testing.T) {
			assert.Equal(t, tc.want, GenKey(tc.rank))
		})
	}
}

func TestGenKey_IsBijection(t *testing.T) {
	seen := map[[3]int]int{}
	for i := 0; i < NumKeys; i++ {
		key := GenKey(i)
		require.Len(t, key, KeyLength)

		digits := map[int]bool{}
		for _, d := range key {
			require.True(t, d >= 0 && d < NumWords, "digit %d out of range in %v", d, key)
			require.False(t, digits[d], "repeated digit in %v", key)
			digits[d] = true
		}

		k := [3]int{key[0], key[1], key[2]}
		prev, dup := seen[k]
		require.False(t, dup, "ranks %d and %d both unrank to %v", prev, i, key)
		seen[k] = i
	}
	assert.Len(t, seen, NumKeys)
}

func TestGenKey_Deterministic(t *testing.T) {
	for i := 0; i < NumKeys; i++ {
		assert.Equal(t, GenKey(i), GenKey(i))
	}
}

func TestKeyDeck_ExhaustsEveryCodeOnce(t *testing.T) {
	deck := NewKeyDeck(rand.New(rand.NewPCG(7, 11)))
	require.Len(t, deck, NumKeys)

	drawn := map[string]bool{}
	for round := 0; round < NumKeys; round++ {
		key := fmt.Sprint(keyForRound(deck, round))
		assert.False(t, drawn[key], "code %s drawn twice before exhaustion", key)
		drawn[key] = true
	}
	assert.Len(t, drawn, NumKeys)

	// The next pass replays the deck from the top.
	assert.Equal(t, keyForRound(deck, 0), keyForRound(deck, NumKeys))
}

func TestKeyDeck_OrderDependsOnlyOnShuffle(t *testing.T) {
	a := NewKeyDeck(rand.New(rand.NewPCG(1, 2)))
	b := NewKeyDeck(rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, a, b)
}

func TestAllKeys_ReturnsCopies(t *testing.T) {
	keys := AllKeys()
	require.Len(t, keys, NumKeys)
	keys[0][0] = 99
	assert.Equal(t, []int{0, 1, 2}, GenKey(0))
	assert.NotEqual(t, 99, AllKeys()[0][0])
}
