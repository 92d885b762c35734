package micromatch

// User type discriminator stored in Record.UserType.
const (
	UserTypeBusiness   = "business"
	UserTypeInfluencer = "influencer"
)

// Conventional Partnership status values. The field is free text; these
// are the values the product actually writes.
const (
	StatusConnected = "connected"
	StatusPending   = "pending"
	StatusPast      = "past"
	StatusDeclined  = "declined"
	StatusOngoing   = "ongoing"
)

// Record is the unit of storage: one business or influencer account,
// keyed in the store by its ID.
type Record struct {
	ID           string              `json:"id"`
	Email        string              `json:"email"`
	UserType     string              `json:"userType"`
	Profile      map[string]string   `json:"profile"`
	Partnerships []Partnership       `json:"partnerships"`
	Requests     []ConnectionRequest `json:"requests,omitempty"`
}

// DisplayName joins the profile first/last name the way the pages do.
func (r Record) DisplayName() string {
	first := r.Profile["firstName"]
	last := r.Profile["lastName"]
	if first == "" {
		return last
	}
	if last == "" {
		return first
	}
	return first + " " + last
}

// Partnership is an association embedded in a Record's partnerships
// list. Exactly one side of the counterpart snapshot is populated,
// depending on which party owns the record. Entries appended to the
// business record on accept carry no ID and no RequestedAt.
type Partnership struct {
	ID int64 `json:"id,omitempty"`

	InfluencerID      string            `json:"influencerId,omitempty"`
	InfluencerName    string            `json:"influencerName,omitempty"`
	InfluencerEmail   string            `json:"influencerEmail,omitempty"`
	InfluencerProfile map[string]string `json:"influencerProfile,omitempty"`

	BusinessID      string            `json:"businessId,omitempty"`
	BusinessName    string            `json:"businessName,omitempty"`
	BusinessEmail   string            `json:"businessEmail,omitempty"`
	BusinessProfile map[string]string `json:"businessProfile,omitempty"`

	Status      string `json:"status"`
	RequestedAt string `json:"requestedAt,omitempty"`
	AcceptedAt  string `json:"acceptedAt,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// ConnectionRequest is a pending invitation from a business, embedded in
// an influencer Record's requests list. It is removed, not transitioned,
// when the influencer resolves it.
type ConnectionRequest struct {
	ID              int64             `json:"id"`
	BusinessID      string            `json:"businessId"`
	BusinessName    string            `json:"businessName"`
	BusinessEmail   string            `json:"businessEmail"`
	BusinessProfile map[string]string `json:"businessProfile"`
	Status          string            `json:"status"`
	CreatedAt       string            `json:"createdAt"`
}
