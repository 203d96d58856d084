package engine

import "math/rand/v2"

const (
	// NumWords is the number of secret words each team holds.
	NumWords = 4
	// KeyLength is the number of digits in a code.
	KeyLength = 3
	// NumKeys is the number of distinct codes: 4 * 3 * 2.
	NumKeys = 24
)

var allKeys = buildKeys()

func buildKeys() [][]int {
	keys := make([][]int, NumKeys)
	for i := range keys {
		keys[i] = GenKey(i)
	}
	return keys
}

// GenKey unranks i into an ordered pick of KeyLength distinct digits from
// 0..NumWords-1. Each step takes r = i mod n from the remaining digits, then
// continues with (i - r) / n over one fewer digit.
func GenKey(i int) []int {
	remaining := make([]int, NumWords)
	for d := range remaining {
		remaining[d] = d
	}
	key := make([]int, 0, KeyLength)
	n := NumWords
	for len(key) < KeyLength && n > 1 {
		r := i % n
		key = append(key, remaining[r])
		remaining = append(remaining[:r], remaining[r+1:]...)
		i = (i - r) / n
		n--
	}
	return key
}

// AllKeys returns a copy of every code, indexed by rank.
func AllKeys() [][]int {
	out := make([][]int, len(allKeys))
	for i, k := range allKeys {
		out[i] = append([]int(nil), k...)
	}
	return out
}

// NewKeyDeck returns a shuffled permutation of all key ranks.
func NewKeyDeck(rng *rand.Rand) []int {
	return rng.Perm(NumKeys)
}

// keyForRound draws the code for a team's round. Rounds past the end of the
// deck replay it from the top, so every code is used before any repeats.
func keyForRound(deck []int, roundNo int) []int {
	if len(deck) == 0 {
		return GenKey(roundNo % NumKeys)
	}
	return GenKey(deck[roundNo%len(deck)])
}
