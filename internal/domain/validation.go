package domain

import "regexp"

var (
	// Email: латиница/цифры/+_.- до @, домен, TLD минимум 2 буквы
	emailRe = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	// Username: 3..20 символов, буквы/цифры/_/-
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

	upperRe = regexp.MustCompile(`[A-Z]`)
	lowerRe = regexp.MustCompile(`[a-z]`)
	digitRe = regexp.MustCompile(`[0-9]`)
	symRe   = regexp.MustCompile(`[!@#$%^&*()]`)
)

func ValidEmail(s string) bool    { return emailRe.MatchString(s) }
func ValidUsername(s string) bool { return usernameRe.MatchString(s) }

// Результат проверки пароля: валидность + список нарушений (для /password/validate)
type PasswordValidation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidatePassword: мин 8, обе буквы в разных регистрах, цифра,
// спецсимвол из набора !@#$%^&*()
func ValidatePassword(s string) PasswordValidation {
	var errs []string
	if s == "" {
		return PasswordValidation{Valid: false, Errors: []string{"Password cannot be empty."}}
	}
	if len(s) < 8 {
		errs = append(errs, "Password must be at least 8 characters long.")
	}
	if !upperRe.MatchString(s) {
		errs = append(errs, "Password must contain at least one uppercase letter.")
	}
	if !lowerRe.MatchString(s) {
		errs = append(errs, "Password must contain at least one lowercase letter.")
	}
	if !digitRe.MatchString(s) {
		errs = append(errs, "Password must contain at least one digit.")
	}
	if !symRe.MatchString(s) {
		errs = append(errs, "Password must contain at least one special character (!@#$%^&*()).")
	}
	if errs == nil {
		errs = []string{}
	}
	return PasswordValidation{Valid: len(errs) == 0, Errors: errs}
}

func ValidPassword(s string) bool { return ValidatePassword(s).Valid }
