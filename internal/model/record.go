// Package model holds the records exchanged with the print-order and
// marketplace service. Field names follow the service's JSON (mongo style
// "_id" keys, camelCase fields).
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is a domain entity with a stable unique identifier.
type Record interface {
	RecordID() string
}

// Person is a user reference. The service sends either a bare id string or a
// populated {_id, name, email} object depending on the endpoint.
type Person struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UnmarshalJSON accepts both the id-only and the populated forms.
func (p *Person) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*p = Person{ID: id}
		return nil
	}
	type plain Person
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("person: %w", err)
	}
	*p = Person(v)
	return nil
}

// DisplayName returns the name or "Unknown".
func (p *Person) DisplayName() string {
	if p == nil || p.Name == "" {
		return "Unknown"
	}
	return p.Name
}

// DisplayEmail returns the email or "N/A".
func (p *Person) DisplayEmail() string {
	if p == nil || p.Email == "" {
		return "N/A"
	}
	return p.Email
}
