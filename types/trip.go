package types

import "time"

// Trip mirrors a trips/{tripCode} document: the shared group entity
// participants join by code. Users holds participant emails.
type Trip struct {
	Code        string    `json:"code"`
	Destination string    `json:"destination"`
	Description string    `json:"description,omitempty"`
	ImageName   string    `json:"imageName,omitempty"`
	Users       []string  `json:"users"`
	Timestamp   time.Time `json:"timestamp"`
}

// HasParticipant reports whether the given email is a trip participant.
func (t *Trip) HasParticipant(email string) bool {
	for _, u := range t.Users {
		if u == email {
			return true
		}
	}
	return false
}
