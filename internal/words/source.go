// Package words supplies secret words for new games from weighted lists.
package words

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

var ErrNotEnoughWords = errors.New("not enough distinct words")
var ErrNoWeightedLists = errors.New("no word list has a positive weight")

// DefaultList is the list that gets weight 1 when no weights are configured.
const DefaultList = "words"

type Source interface {
	DistinctWords(n int) ([]string, error)
}

// Reweighter is implemented by sources that can produce a copy with
// per-game list weights.
type Reweighter interface {
	WithWeights(weights map[string]float64) Source
}

// List is one named word list.
type List struct {
	Name        string   `json:"file"`
	Description string   `json:"desc,omitempty"`
	Weight      float64  `json:"weight"`
	Words       []string `json:"-"`
}

// Weighted draws each word from a list picked in proportion to its weight.
type Weighted struct {
	lists []List
	mu    sync.Mutex
	rng   *rand.Rand
}

func NewWeighted(lists []List, rng *rand.Rand) *Weighted {
	return &Weighted{lists: lists, rng: rng}
}

// LoadDir reads every .txt file in dir as a list named after the file. Lines
// starting with "#" are comments; the first one describes the list.
// weights overrides the default of 1 for DefaultList and 0 for the rest.
func LoadDir(dir string, weights map[string]float64, rng *rand.Rand) (*Weighted, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read word dir: %w", err)
	}
	var lists []List
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".txt" {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".txt")
		words, desc, err := readList(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		weight := 0.0
		if name == DefaultList {
			weight = 1
		}
		if w, ok := weights[name]; ok {
			weight = w
		}
		lists = append(lists, List{Name: name, Description: desc, Weight: weight, Words: words})
	}
	return NewWeighted(lists, rng), nil
}

func readList(path string) (words []string, desc string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "#"):
			if desc == "" {
				desc = strings.TrimSpace(strings.TrimPrefix(line, "#"))
			}
		default:
			words = append(words, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return words, desc, nil
}

// Lists describes the configured lists without their words.
func (w *Weighted) Lists() []List {
	out := make([]List, len(w.lists))
	for i, l := range w.lists {
		out[i] = List{Name: l.Name, Description: l.Description, Weight: l.Weight}
	}
	return out
}

// WithWeights returns a source over the same lists with some weights
// replaced. Unknown names are ignored.
func (w *Weighted) WithWeights(weights map[string]float64) Source {
	lists := slices.Clone(w.lists)
	for i := range lists {
		if v, ok := weights[lists[i].Name]; ok {
			lists[i].Weight = v
		}
	}
	w.mu.Lock()
	seed := w.rng.Uint64()
	w.mu.Unlock()
	return NewWeighted(lists, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func (w *Weighted) Word() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.word()
}

func (w *Weighted) word() (string, error) {
	var total float64
	for _, l := range w.lists {
		if l.Weight > 0 && len(l.Words) > 0 {
			total += l.Weight
		}
	}
	if total <= 0 {
		return "", ErrNoWeightedLists
	}
	pick := w.rng.Float64() * total
	for _, l := range w.lists {
		if l.Weight <= 0 || len(l.Words) == 0 {
			continue
		}
		if pick < l.Weight {
			return l.Words[w.rng.IntN(len(l.Words))], nil
		}
		pick -= l.Weight
	}
	// Float rounding can leave pick just past the last bucket.
	last := w.lastWeighted()
	return last.Words[w.rng.IntN(len(last.Words))], nil
}

func (w *Weighted) lastWeighted() List {
	for i := len(w.lists) - 1; i >= 0; i-- {
		if w.lists[i].Weight > 0 && len(w.lists[i].Words) > 0 {
			return w.lists[i]
		}
	}
	return List{}
}

// DistinctWords draws n words with no repeats.
func (w *Weighted) DistinctWords(n int) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	available := map[string]bool{}
	for _, l := range w.lists {
		if l.Weight <= 0 {
			continue
		}
		for _, word := range l.Words {
			available[strings.ToUpper(word)] = true
		}
	}
	if len(available) < n {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrNotEnoughWords, n, len(available))
	}

	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		word, err := w.word()
		if err != nil {
			return nil, err
		}
		word = strings.ToUpper(word)
		if seen[word] {
			continue
		}
		seen[word] = true
		out = append(out, word)
	}
	return out, nil
}
