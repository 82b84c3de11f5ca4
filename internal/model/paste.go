package model

import "time"

type Paste struct {
	UUID         string     `json:"uuid"`
	OwnerID      int        `json:"owner_id"`
	OwnerName    string     `json:"owner_name"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Language     string     `json:"language"`
	PasswordHash string     `json:"password_hash,omitempty"`
	OpenEdit     bool       `json:"open_edit"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	EditedAt     *time.Time `json:"edited_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

func (p Paste) PasswordProtected() bool {
	return p.PasswordHash != ""
}

func (p Paste) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && !now.Before(*p.ExpiresAt)
}
