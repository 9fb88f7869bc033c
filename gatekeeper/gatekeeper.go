package gatekeeper

import (
	"encoding/json"
	"fmt"
)

// Gatekeeper is one named feature flag.
type Gatekeeper struct {
	Name    string `json:"key"`
	Enabled bool   `json:"value"`
}

// Set is an ordered collection of gatekeepers for one application.
type Set []Gatekeeper

// Get returns the enabled state of the named gatekeeper and whether it
// exists in the set.
func (s Set) Get(name string) (enabled, ok bool) {
	for _, gk := range s {
		if gk.Name == name {
			return gk.Enabled, true
		}
	}
	return false, false
}

// graphResponse is the wire shape of the gatekeeper edge.
type graphResponse struct {
	Data []struct {
		Gatekeepers []Gatekeeper `json:"gatekeepers"`
	} `json:"data"`
}

// DecodeSet decodes the Graph gatekeeper response body into a Set.
func DecodeSet(raw []byte) (Set, error) {
	var resp graphResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("gatekeeper: decoding response: %w", err)
	}
	var set Set
	for _, entry := range resp.Data {
		set = append(set, entry.Gatekeepers...)
	}
	return set, nil
}

// encodeStored and decodeStored are the persistence codec. The mirror
// stores the flat set, not the wire envelope.
func encodeStored(s Set) ([]byte, error) {
	return json.Marshal(s)
}

func decodeStored(data []byte) (Set, error) {
	var s Set
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("gatekeeper: decoding stored set: %w", err)
	}
	return s, nil
}
