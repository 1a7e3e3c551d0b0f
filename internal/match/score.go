// Package match implements the heuristic similarity scoring between lost and
// found item reports. Scoring is pure and deterministic; persistence and
// lifecycle decisions live in the services layer.
package match

import (
	"math"
	"regexp"
	"strings"

	"github.com/foundly/foundly-server/internal/model"
)

// StrongThreshold is the minimum score at which a pair is persisted as an
// automatic match.
const StrongThreshold = 70

// Signal weights. They sum to 100 so the score reads as a percentage.
const (
	weightCategory    = 25
	weightName        = 35
	weightDescription = 20
	weightLocation    = 15
	weightDate        = 5

	locationTokenMinLen = 3
	dateProximityDays   = 3
)

var nonWord = regexp.MustCompile(`\W+`)

// Similarity returns the Dice coefficient over character bigrams of the two
// strings, in [0,1]. Whitespace is stripped before comparison. Identical
// strings score 1, strings with no shared bigram score 0, and the measure is
// symmetric.
func Similarity(a, b string) float64 {
	a = stripSpace(a)
	b = stripSpace(b)
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}

	bigrams := make(map[string]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		bigrams[string(ra[i:i+2])]++
	}

	inter := 0
	for i := 0; i < len(rb)-1; i++ {
		g := string(rb[i : i+2])
		if bigrams[g] > 0 {
			bigrams[g]--
			inter++
		}
	}
	return 2.0 * float64(inter) / float64(len(ra)+len(rb)-2)
}

// Score computes the 0-100 compatibility score between a lost and a found
// report as a weighted sum of independent signals: category equality, name and
// description similarity, location keyword overlap, and date proximity.
func Score(lost *model.LostItem, found *model.FoundItem) int {
	score := 0.0

	if lost.Category == found.Category {
		score += weightCategory
	}

	score += Similarity(strings.ToLower(lost.Name), strings.ToLower(found.Name)) * weightName

	// Description is optional on both sides; an empty one contributes nothing.
	if lost.Description != "" && found.Description != "" {
		score += Similarity(strings.ToLower(lost.Description), strings.ToLower(found.Description)) * weightDescription
	}

	if locationsOverlap(lost.Location, found.Location) {
		score += weightLocation
	}

	if dayDiff := math.Abs(lost.LostDate.Sub(found.FoundDate).Hours() / 24); dayDiff <= dateProximityDays {
		score += weightDate
	}

	s := int(math.Round(score))
	if s > 100 {
		s = 100
	}
	return s
}

// locationsOverlap reports whether the two free-text locations share a keyword
// longer than locationTokenMinLen once split on non-word characters.
func locationsOverlap(a, b string) bool {
	bTokens := make(map[string]bool)
	for _, t := range nonWord.Split(strings.ToLower(b), -1) {
		if len(t) > locationTokenMinLen {
			bTokens[t] = true
		}
	}
	for _, t := range nonWord.Split(strings.ToLower(a), -1) {
		if len(t) > locationTokenMinLen && bTokens[t] {
			return true
		}
	}
	return false
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
