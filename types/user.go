package types

// User mirrors a users/{uid} document. The mixed-case wire field names are
// part of the external schema and must be preserved.
type User struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"Name"`
	Surname     string   `json:"Surname"`
	PhoneNumber string   `json:"phoneNumber,omitempty"`
	IBAN        string   `json:"IBAN,omitempty"`
	Trips       []string `json:"trips"`
}

// UserIdentity is the authenticated caller's identity as supplied by the
// identity provider. Email is the identity used throughout the relationship
// and ledger documents, always lowercased.
type UserIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
