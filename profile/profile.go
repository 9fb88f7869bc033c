package profile

import (
	"encoding/json"
	"fmt"
	"time"
)

// Profile is an immutable snapshot of a user's Graph profile. A refreshed
// profile always replaces the cached one; fields are never mutated in place.
type Profile struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name,omitempty"`
	MiddleName string    `json:"middle_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	Name       string    `json:"name,omitempty"`
	Link       string    `json:"link,omitempty"`
	Email      string    `json:"email,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// fields is the field list requested from the profile endpoint.
const fields = "id,first_name,middle_name,last_name,name,link,email"

// decodeProfile decodes a Graph profile response body.
func decodeProfile(raw []byte, fetchedAt time.Time) (*Profile, error) {
	p := &Profile{}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("profile: decoding response: %w", err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("profile: response carries no identifier")
	}
	p.FetchedAt = fetchedAt
	return p, nil
}

// encodeStored and decodeStored are the persistence codec.
func encodeStored(p *Profile) ([]byte, error) {
	return json.Marshal(p)
}

func decodeStored(data []byte) (*Profile, error) {
	p := &Profile{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("profile: decoding stored profile: %w", err)
	}
	return p, nil
}
