// Package answer implements fuzzy matching of free-text answers against
// the accepted answers of a question, tuned for Arabic input.
package answer

import (
	"strings"
	"unicode"
)

// Normalize folds Arabic orthographic variants so that common spelling
// differences do not fail a correct answer: hamza forms of alef collapse
// to bare alef, taa marbuta to haa, alef maqsura to yaa, and diacritics
// are stripped. Whitespace is collapsed and latin letters lowercased.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == 'أ' || r == 'إ' || r == 'آ':
			b.WriteRune('ا')
		case r == 'ة':
			b.WriteRune('ه')
		case r == 'ى':
			b.WriteRune('ي')
		case r >= 0x064B && r <= 0x065F, r == 0x0670:
			// tashkeel, dropped
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// levenshtein is the classic two-row edit distance over runes.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// maxDistance scales the tolerated edit distance with answer length.
func maxDistance(length int) int {
	d := length / 4
	if d < 1 {
		d = 1
	}
	return d
}

// Matches reports whether a submitted answer should be accepted for the
// canonical answer or any of its alternates. Matching is tiered: exact,
// containment either way, word overlap, then bounded edit distance.
func Matches(submitted, canonical string, alternates []string) bool {
	sub := Normalize(submitted)
	if sub == "" {
		return false
	}

	accepted := make([]string, 0, len(alternates)+1)
	accepted = append(accepted, Normalize(canonical))
	for _, alt := range alternates {
		if n := Normalize(alt); n != "" {
			accepted = append(accepted, n)
		}
	}

	for _, ans := range accepted {
		if ans == "" {
			continue
		}
		if sub == ans {
			return true
		}
		if strings.Contains(sub, ans) || strings.Contains(ans, sub) {
			return true
		}
		if wordOverlap(sub, ans) {
			return true
		}
		ansLen := len([]rune(ans))
		if ansLen > 4 && levenshtein(sub, ans) <= maxDistance(ansLen) {
			return true
		}
	}
	return false
}

// wordOverlap accepts when any significant word of the submission matches
// a significant word of the answer, exactly or within edit distance.
func wordOverlap(sub, ans string) bool {
	for _, sw := range strings.Fields(sub) {
		if len([]rune(sw)) < 3 {
			continue
		}
		for _, aw := range strings.Fields(ans) {
			awLen := len([]rune(aw))
			if awLen < 3 {
				continue
			}
			if sw == aw {
				return true
			}
			if awLen > 4 && levenshtein(sw, aw) <= maxDistance(awLen) {
				return true
			}
		}
	}
	return false
}
