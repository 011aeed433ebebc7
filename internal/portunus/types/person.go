package types

import (
	"strings"
	"time"
)

type Person struct {
	ID         string      `json:"id"`
	FirstName  string      `json:"first_name" validate:"min=2,max=100"`
	LastName   string      `json:"last_name" validate:"min=2,max=100"`
	DocumentID string      `json:"document_id" validate:"min=5,max=64"`
	Email      string      `json:"email,omitempty" validate:"omitempty,email"`
	Phone      string      `json:"phone,omitempty" validate:"omitempty,max=32"`
	Active     bool        `json:"active"`
	ScheduleID string      `json:"schedule_id,omitempty"` // weak reference; empty means unassigned
	Credential *Credential `json:"credential,omitempty" validate:"-"`
}

func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Credential is the state of a person's QR credential. Only issuance and
// expiry are tracked here; encoding the QR artifact happens elsewhere.
type Credential struct {
	Issued    bool       `json:"issued"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ValidAt reports whether the credential is issued and not expired at t.
// Expiry is exclusive: a credential expiring at t is no longer valid at t.
func (c *Credential) ValidAt(t time.Time) bool {
	if c == nil || !c.Issued {
		return false
	}
	return c.ExpiresAt == nil || t.Before(*c.ExpiresAt)
}

func (c *Credential) Clone() *Credential {
	if c == nil {
		return nil
	}
	out := *c
	if c.ExpiresAt != nil {
		exp := *c.ExpiresAt
		out.ExpiresAt = &exp
	}
	return &out
}

// Clone returns a deep copy so callers never share credential pointers with
// a store.
func (p Person) Clone() Person {
	p.Credential = p.Credential.Clone()
	return p
}
