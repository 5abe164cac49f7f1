package models

import "time"

// MasterAccountUsername is the username of the bootstrap master account.
const MasterAccountUsername = "admin"

// Account is a registered user. Accounts own themed collections and carry a
// display name surfaced as creator_name on collections they publish.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName,omitempty"`
	PasswordHash string    `json:"-"` // bcrypt hash, never serialized in API responses
	IsMaster     bool      `json:"isMaster"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreatorName returns the name to stamp onto collections this account
// publishes, falling back to the username when no display name is set.
func (a Account) CreatorName() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	if a.Username != "" {
		return a.Username
	}
	return "Anonymous"
}

// AccountStorage is the on-disk shape, which unlike Account includes the
// password hash.
type AccountStorage struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName,omitempty"`
	PasswordHash string    `json:"passwordHash"`
	IsMaster     bool      `json:"isMaster"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ToStorage converts an Account to its persistable form.
func (a Account) ToStorage() AccountStorage {
	return AccountStorage(a)
}

// ToAccount converts stored data back to an Account.
func (as AccountStorage) ToAccount() Account {
	return Account(as)
}
