package validation

import (
	"fmt"
	"strings"

	"auditionsync/internal/result"
)

// Identity is the part of a profile every downstream writer relies on.
type Identity interface {
	FirstName() string
	LastName() string
	Email() string
}

// ValidateProfiles checks every profile and returns them unchanged when all
// pass. An empty list is valid.
func ValidateProfiles[P Identity](profiles []P) result.Result[[]P] {
	var errs []string
	for i, p := range profiles {
		errs = append(errs, ValidateProfile(p, i)...)
	}
	return result.FromErrors(profiles, errs)
}

// ValidateProfile requires non-blank first name, last name and email.
func ValidateProfile(p Identity, index int) []string {
	prefix := fmt.Sprintf("Profile #%d", index+1)
	if p == nil {
		return []string{prefix + ": missing"}
	}
	var errs []string
	if strings.TrimSpace(p.FirstName()) == "" {
		errs = append(errs, prefix+": missing first name")
	}
	if strings.TrimSpace(p.LastName()) == "" {
		errs = append(errs, fmt.Sprintf("%s (%s): missing last name", prefix, strings.TrimSpace(p.FirstName())))
	}
	if strings.TrimSpace(p.Email()) == "" {
		errs = append(errs, prefix+": missing email")
	}
	return errs
}
