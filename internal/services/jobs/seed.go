package jobs

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ternarybob/creatorlogic/internal/models"
)

var seedValidator = validator.New()

// SanitizeSeed strips a leading handle marker and whitespace and rejects
// anything that is empty or looks like a URL. Jobs only run on bare handles.
func SanitizeSeed(raw string) (string, error) {
	seed := strings.TrimSpace(strings.ReplaceAll(raw, "@", ""))
	if seed == "" {
		return "", fmt.Errorf("%w: seed is empty", models.ErrInvalidSeed)
	}

	lower := strings.ToLower(seed)
	if strings.Contains(seed, "/") || strings.HasPrefix(lower, "http:") || strings.HasPrefix(lower, "https:") ||
		strings.HasPrefix(lower, "www.") ||
		seedValidator.Var(seed, "url") == nil {
		return "", fmt.Errorf("%w: %q looks like a URL, enter the handle only", models.ErrInvalidSeed, seed)
	}

	if strings.ContainsAny(seed, " \t\r\n") || seedValidator.Var(seed, "max=64") != nil {
		return "", fmt.Errorf("%w: %q is not a valid handle", models.ErrInvalidSeed, seed)
	}

	return seed, nil
}
