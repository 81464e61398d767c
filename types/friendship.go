package types

// RequestStatus is the lifecycle status of a one-way friend request document.
// There is no rejected state; absence of a document is the only
// "no relationship" state besides pending.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
)

// FriendRequest mirrors a friendRequests/{id} document. Identity is the
// ordered (From, To) pair; the reverse direction is a distinct document.
type FriendRequest struct {
	ID     string        `json:"id"`
	From   string        `json:"from"`
	To     string        `json:"to"`
	Status RequestStatus `json:"status"`
}

// FriendshipState is the derived relationship state as seen by one user.
type FriendshipState string

const (
	FriendshipRequestSent     FriendshipState = "request_sent"
	FriendshipRequestReceived FriendshipState = "request_received"
	FriendshipEstablished     FriendshipState = "established"
)

// FriendshipView is the derived, never persisted, per-viewer relationship
// with one counterpart. Recomputed on demand from the raw request documents.
type FriendshipView struct {
	Counterpart string          `json:"counterpart"`
	State       FriendshipState `json:"state"`
}

// FriendList partitions a user's counterparts by relationship state.
type FriendList struct {
	Established []FriendshipView `json:"established"`
	Sent        []FriendshipView `json:"sent"`
	Received    []FriendshipView `json:"received"`
}
