// Package domain defines typed identifiers shared across layers.
//
// IDs are distinct types over uuid.UUID so a StayID can never be passed
// where a CountryID is expected. Parsing enforces the trust-boundary
// invariant: IDs must be valid, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "stayledger/pkg/domain-errors"
)

// CountryID identifies a tracked country record.
type CountryID uuid.UUID

// StayID identifies a single stay interval within a tracked country.
type StayID uuid.UUID

// NewCountryID generates a fresh random CountryID.
func NewCountryID() CountryID {
	return CountryID(uuid.New())
}

// NewStayID generates a fresh random StayID.
func NewStayID() StayID {
	return StayID(uuid.New())
}

// ParseCountryID parses and validates a CountryID from its string form.
func ParseCountryID(s string) (CountryID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return CountryID{}, err
	}
	return CountryID(u), nil
}

// ParseStayID parses and validates a StayID from its string form.
func ParseStayID(s string) (StayID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return StayID{}, err
	}
	return StayID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

// String returns the canonical UUID string form.
func (id CountryID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero value.
func (id CountryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// String returns the canonical UUID string form.
func (id StayID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero value.
func (id StayID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText implements encoding.TextMarshaler so IDs serialize as UUID
// strings in JSON payloads.
func (id CountryID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *CountryID) UnmarshalText(b []byte) error {
	parsed, err := ParseCountryID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (id StayID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *StayID) UnmarshalText(b []byte) error {
	parsed, err := ParseStayID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
