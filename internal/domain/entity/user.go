package entity

// Identity is the authenticated caller as carried by the marketplace token.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`

	// Token is the raw bearer token, forwarded to the marketplace API.
	Token string `json:"-"`
}

// Profile is what the marketplace API returns for /profile/myProfile.
type Profile struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"profileImage"`
}

func (p *Profile) ParticipantInfo() ParticipantInfo {
	return ParticipantInfo{ID: p.Email, UserID: p.ID, Name: p.Name, Avatar: p.Avatar}
}
