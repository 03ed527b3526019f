// Package password scores candidate passwords for the sign-up flow. The
// score drives both the strength meter and a hard submission gate.
package password

// MinSubmitScore is the hard business rule: credentials below this score
// cannot be submitted.
const MinSubmitScore = 60

// Score rates pw on an additive 0-100 scale: +20 for length >= 8, a further
// +20 for length >= 12, +20 each for a lowercase and an uppercase letter,
// +10 each for a digit and a symbol. The raw maximum is exactly 100; the
// result is clamped anyway.
func Score(pw string) int {
	score := 0

	if len(pw) >= 8 {
		score += 20
	}
	if len(pw) >= 12 {
		score += 20
	}

	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}

	if lower {
		score += 20
	}
	if upper {
		score += 20
	}
	if digit {
		score += 10
	}
	if symbol {
		score += 10
	}

	return min(score, 100)
}

// Submittable reports whether pw clears the submission gate.
func Submittable(pw string) bool {
	return Score(pw) >= MinSubmitScore
}
