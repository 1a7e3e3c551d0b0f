package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundly/foundly-server/internal/model"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "iPhone 13", "iPhone 13", 1},
		{"disjoint", "abcd", "wxyz", 0},
		{"single char", "a", "ab", 0},
		{"whitespace ignored", "blue  backpack", "bluebackpack", 1},
		{"partial", "night", "nacht", 0.25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Similarity(tc.a, tc.b), 1e-9)
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"iPhone 13", "iPhone 13 Pro"},
		{"black leather wallet", "wallet, black"},
		{"", "something"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), "similarity must be symmetric for %q/%q", p[0], p[1])
	}
}

func TestScoreBounds(t *testing.T) {
	lost := &model.LostItem{
		Name: "iPhone 13", Category: "Electronics", Description: "black, cracked screen",
		Location: "Main Library", LostDate: date("2024-05-01"),
	}
	found := &model.FoundItem{
		Name: "iPhone 13", Category: "Electronics", Description: "black, cracked screen",
		Location: "Main Library", FoundDate: date("2024-05-01"),
	}
	assert.Equal(t, 100, Score(lost, found), "identical items score the maximum")

	unrelated := &model.FoundItem{
		Name: "umbrella", Category: "Accessories", Description: "red",
		Location: "gym", FoundDate: date("2024-09-01"),
	}
	s := Score(lost, unrelated)
	assert.GreaterOrEqual(t, s, 0)
	assert.LessOrEqual(t, s, 100)
}

func TestScoreStrongMatchScenario(t *testing.T) {
	lost := &model.LostItem{
		Name: "iPhone 13", Category: "Electronics", Description: "black phone with cracked screen",
		Location: "Main Library", LostDate: date("2024-05-01"),
	}
	found := &model.FoundItem{
		Name: "iPhone 13 Pro", Category: "Electronics", Description: "black phone, screen cracked",
		Location: "Main Library 2nd Floor", FoundDate: date("2024-05-02"),
	}
	s := Score(lost, found)
	require.GreaterOrEqual(t, s, StrongThreshold, "the canonical strong-match pair must clear the threshold")
	require.LessOrEqual(t, s, 100)
}

func TestScoreSignals(t *testing.T) {
	base := &model.LostItem{
		Name: "wallet", Category: "Accessories",
		Location: "cafeteria", LostDate: date("2024-05-01"),
	}

	t.Run("category mismatch drops 25", func(t *testing.T) {
		same := &model.FoundItem{Name: "wallet", Category: "Accessories", Location: "cafeteria", FoundDate: date("2024-05-01")}
		diff := &model.FoundItem{Name: "wallet", Category: "Electronics", Location: "cafeteria", FoundDate: date("2024-05-01")}
		assert.Equal(t, 25, Score(base, same)-Score(base, diff))
	})

	t.Run("empty description contributes nothing", func(t *testing.T) {
		withDesc := *base
		withDesc.Description = "brown leather"
		found := &model.FoundItem{Name: "wallet", Category: "Accessories", Location: "cafeteria", FoundDate: date("2024-05-01")}
		assert.Equal(t, Score(base, found), Score(&withDesc, found), "one-sided description must be skipped")
	})

	t.Run("short location tokens do not count", func(t *testing.T) {
		lost := *base
		lost.Location = "lot B"
		found := &model.FoundItem{Name: "wallet", Category: "Accessories", Location: "lot C", FoundDate: date("2024-05-01")}
		near := &model.FoundItem{Name: "wallet", Category: "Accessories", Location: "north cafeteria", FoundDate: date("2024-05-01")}
		assert.Equal(t, 15, Score(base, near)-Score(&lost, found))
	})

	t.Run("date proximity boundary", func(t *testing.T) {
		in := &model.FoundItem{Name: "wallet", Category: "Accessories", Location: "cafeteria", FoundDate: date("2024-05-04")}
		out := &model.FoundItem{Name: "wallet", Category: "Accessories", Location: "cafeteria", FoundDate: date("2024-05-05")}
		assert.Equal(t, 5, Score(base, in)-Score(base, out), "3-day difference is in, 4-day is out")
	})
}
