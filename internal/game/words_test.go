package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreGuess(t *testing.T) {
	bank := NewWordBank(DefaultMatchConfig())

	tests := []struct {
		name   string
		guess  string
		target string
		want   GuessResult
	}{
		{"exact match", "elephant", "elephant", GuessCorrect},
		{"case and whitespace normalized", "Elephant ", "elephant", GuessCorrect},
		{"edit distance one", "elefant", "elephant", GuessClose},
		{"edit distance two", "elphant", "elephant", GuessClose},
		{"unrelated word", "banana", "elephant", GuessWrong},
		{"containment within gap", "cat", "catnip", GuessClose},
		{"containment beyond gap", "cream", "ice cream", GuessWrong},
		{"empty guess", "", "elephant", GuessWrong},
		{"multi word exact", "Cold War", "cold war", GuessCorrect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bank.ScoreGuess(tt.guess, tt.target))
		})
	}
}

func TestScoreGuessDeterministic(t *testing.T) {
	bank := NewWordBank(DefaultMatchConfig())
	for i := 0; i < 10; i++ {
		assert.Equal(t, GuessClose, bank.ScoreGuess("elefant", "elephant"))
	}
}

func TestOfferWordsOnePerTier(t *testing.T) {
	bank := NewWordBank(DefaultMatchConfig())

	opts := bank.OfferWords()
	require.Len(t, opts, 3)
	assert.Equal(t, DifficultyEasy, opts[0].Difficulty)
	assert.Equal(t, DifficultyMedium, opts[1].Difficulty)
	assert.Equal(t, DifficultyHard, opts[2].Difficulty)
	for _, opt := range opts {
		assert.NotEmpty(t, opt.Word)
		assert.Greater(t, opt.Points, 0)
	}
}

func TestPointsFor(t *testing.T) {
	bank := NewWordBank(DefaultMatchConfig())

	assert.Equal(t, 1, bank.PointsFor(DifficultyEasy, false))
	assert.Equal(t, 1, bank.PointsFor(DifficultyEasy, true))
	assert.Equal(t, 2, bank.PointsFor(DifficultyMedium, false))
	assert.Equal(t, 1, bank.PointsFor(DifficultyMedium, true))
	assert.Equal(t, 3, bank.PointsFor(DifficultyHard, false))
	assert.Equal(t, 2, bank.PointsFor(DifficultyHard, true))
	assert.Equal(t, 0, bank.PointsFor(Difficulty("bogus"), false))
}

func TestMaskWord(t *testing.T) {
	assert.Equal(t, "_ _ _", MaskWord("cat"))
	assert.Equal(t, "_ _ _ _   _ _ _", MaskWord("cold war"))
	assert.Equal(t, "", MaskWord(""))
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("same", "same"))
	assert.Equal(t, 1, levenshtein("elefant", "elephant"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
	assert.Equal(t, 5, levenshtein("", "hello"))
	assert.Equal(t, 5, levenshtein("hello", ""))
}
