package crumbshare

import "unicode"

// EvaluatePasswordStrength scores a share password by length and character
// variety. The result is advisory UI feedback only; any password, however
// weak, is accepted by Encrypt.
func EvaluatePasswordStrength(password string) PasswordStrength {
	if password == "" {
		return PasswordStrength{Level: StrengthNone, Feedback: []string{"enter a password"}}
	}

	var feedback []string
	score := 0

	if len(password) >= 8 {
		score++
	} else {
		feedback = append(feedback, "use at least 8 characters")
	}
	if len(password) >= 12 {
		score++
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	if lower {
		score++
	} else {
		feedback = append(feedback, "add lowercase letters")
	}
	if upper {
		score++
	} else {
		feedback = append(feedback, "add uppercase letters")
	}
	if digit {
		score++
	} else {
		feedback = append(feedback, "add numbers")
	}
	if special {
		score++
	} else {
		feedback = append(feedback, "add symbols")
	}

	level := StrengthWeak
	switch {
	case score >= 5:
		level = StrengthStrong
	case score >= 3:
		level = StrengthMedium
	}
	return PasswordStrength{Score: score, Level: level, Feedback: feedback}
}
