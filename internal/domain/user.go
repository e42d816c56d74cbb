package domain

import "time"

// SignupCredits is granted to every new account, whether it was created with
// a password or through Google sign-in.
const SignupCredits = 20

// GenerationCost is the flat number of credits reserved per generation
// attempt. It is refunded in full when the attempt fails.
const GenerationCost = 10

// User represents an account within the platform. PasswordHash is empty for
// accounts that only ever signed in through Google.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Credits      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether the account supports password login.
func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}
