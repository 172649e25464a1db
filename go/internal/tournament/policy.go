package tournament

import (
	"fmt"
	"strings"
)

// Policy decides what happens to the blinds when a round expires.
type Policy string

const (
	// PolicyManual raises the alarm when the app is visible and waits for the
	// player. Expiry in the background advances the blinds silently.
	PolicyManual Policy = "manual"
	// PolicyAutoAdvance always advances the blinds on expiry.
	PolicyAutoAdvance Policy = "auto_advance"
)

func ParsePolicy(value string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyManual:
		return PolicyManual, nil
	case PolicyAutoAdvance:
		return PolicyAutoAdvance, nil
	default:
		return "", fmt.Errorf("unknown expiry policy %q", value)
	}
}

// UnmarshalText lets the policy be parsed straight from the environment.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
