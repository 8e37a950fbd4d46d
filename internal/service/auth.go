package service

import "munchkin-tracker/internal/domain"

// checkPasscode gates privileged mutations behind the shared passphrase. This
// is an application-level convention for a trusted co-located group, not a
// security boundary: there is no lockout and no backoff on mismatch.
func checkPasscode(got, want string) error {
	if got != want {
		return domain.ErrBadPasscode
	}
	return nil
}
