package game

import (
	"math/rand"
	"strings"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// GuessResult classifies a guess against the round's target word.
type GuessResult string

const (
	GuessCorrect GuessResult = "correct"
	GuessClose   GuessResult = "close"
	GuessWrong   GuessResult = "wrong"
	GuessInvalid GuessResult = "invalid"
)

type WordOption struct {
	Word       string     `json:"word"`
	Difficulty Difficulty `json:"difficulty"`
	Points     int        `json:"points"`
}

type pointValue struct {
	guesser int
	drawer  int
}

// MatchConfig holds the closeness thresholds. The values mirror the original
// heuristic and are tunable, not a contract.
type MatchConfig struct {
	MaxEditDistance int
	MaxContainGap   int
}

func DefaultMatchConfig() MatchConfig {
	return MatchConfig{MaxEditDistance: 2, MaxContainGap: 3}
}

// WordBank supplies word options per difficulty tier and scores guesses.
type WordBank struct {
	easy   []string
	medium []string
	hard   []string
	points map[Difficulty]pointValue
	match  MatchConfig
}

func NewWordBank(match MatchConfig) *WordBank {
	return &WordBank{
		easy:   easyWords,
		medium: mediumWords,
		hard:   hardWords,
		points: map[Difficulty]pointValue{
			DifficultyEasy:   {guesser: 1, drawer: 1},
			DifficultyMedium: {guesser: 2, drawer: 1},
			DifficultyHard:   {guesser: 3, drawer: 2},
		},
		match: match,
	}
}

// OfferWords returns one random option per tier. Words may repeat across
// rounds; selection per tier is independent.
func (b *WordBank) OfferWords() []WordOption {
	return []WordOption{
		{Word: b.easy[rand.Intn(len(b.easy))], Difficulty: DifficultyEasy, Points: b.points[DifficultyEasy].guesser},
		{Word: b.medium[rand.Intn(len(b.medium))], Difficulty: DifficultyMedium, Points: b.points[DifficultyMedium].guesser},
		{Word: b.hard[rand.Intn(len(b.hard))], Difficulty: DifficultyHard, Points: b.points[DifficultyHard].guesser},
	}
}

// PointsFor returns the score awarded for a solved round of the given tier.
func (b *WordBank) PointsFor(d Difficulty, drawer bool) int {
	pv, ok := b.points[d]
	if !ok {
		return 0
	}
	if drawer {
		return pv.drawer
	}
	return pv.guesser
}

// ScoreGuess normalizes both strings and classifies the guess. Exact match is
// correct; small edit distance or containment with a small length gap counts
// as close. Deterministic.
func (b *WordBank) ScoreGuess(guess, target string) GuessResult {
	g := strings.ToLower(strings.TrimSpace(guess))
	w := strings.ToLower(strings.TrimSpace(target))

	if g == w {
		return GuessCorrect
	}
	if levenshtein(g, w) <= b.match.MaxEditDistance {
		return GuessClose
	}
	if strings.Contains(g, w) || strings.Contains(w, g) {
		gap := len(g) - len(w)
		if gap < 0 {
			gap = -gap
		}
		if gap <= b.match.MaxContainGap {
			return GuessClose
		}
	}
	return GuessWrong
}

// MaskWord renders the word for guessers: underscores for letters, spaces
// preserved, e.g. "cold war" -> "_ _ _ _   _ _ _".
func MaskWord(word string) string {
	if word == "" {
		return ""
	}
	masked := make([]string, 0, len(word))
	for _, r := range word {
		if r == ' ' {
			masked = append(masked, " ")
		} else {
			masked = append(masked, "_")
		}
	}
	return strings.Join(masked, " ")
}

// levenshtein computes edit distance with unit insert/delete/substitute
// costs, rolling two rows to keep allocations flat.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j-1]+cost, min(curr[j-1]+1, prev[j]+1))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
