package rental

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rentdesk/backend/internal/domain/shared"
)

// ScopeType identifies which kind of partition a scope refers to
type ScopeType string

const (
	ScopeOwner ScopeType = "owner"
	ScopeTeam  ScopeType = "team"
)

// IsValid checks if the scope type is known
func (t ScopeType) IsValid() bool {
	return t == ScopeOwner || t == ScopeTeam
}

// String returns the string representation of ScopeType
func (t ScopeType) String() string {
	return string(t)
}

// Scope partitions all financial data and cache keys. Every lease,
// transaction and expense belongs to exactly one scope, and nothing
// crosses scope boundaries.
type Scope struct {
	Type ScopeType `json:"type"`
	ID   uuid.UUID `json:"id"`
}

// OwnerScope creates a scope for an individual owner
func OwnerScope(id uuid.UUID) Scope {
	return Scope{Type: ScopeOwner, ID: id}
}

// TeamScope creates a scope for a team
func TeamScope(id uuid.UUID) Scope {
	return Scope{Type: ScopeTeam, ID: id}
}

// ParseScope builds a scope from its string parts
func ParseScope(scopeType, id string) (Scope, error) {
	t := ScopeType(scopeType)
	if !t.IsValid() {
		return Scope{}, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unknown scope type %q", scopeType))
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Scope{}, shared.NewDomainError("INVALID_INPUT", "scope id must be a UUID")
	}
	return Scope{Type: t, ID: parsed}, nil
}

// IsZero reports whether the scope is unset
func (s Scope) IsZero() bool {
	return s.Type == "" && s.ID == uuid.Nil
}

// Validate checks scope completeness
func (s Scope) Validate() error {
	if !s.Type.IsValid() {
		return shared.ErrInvalidInput
	}
	if s.ID == uuid.Nil {
		return shared.ErrInvalidInput
	}
	return nil
}

// String returns "owner:<uuid>" or "team:<uuid>"
func (s Scope) String() string {
	return fmt.Sprintf("%s:%s", s.Type, s.ID)
}

// Period identifies one billing cycle as a (year, month) pair
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// PeriodOf returns the period containing the given time
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Start returns the first instant of the period in UTC
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls inside the period
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// Equal reports whether two periods identify the same billing cycle
func (p Period) Equal(other Period) bool {
	return p.Year == other.Year && p.Month == other.Month
}

// Validate checks the period is well formed
func (p Period) Validate() error {
	if p.Year < 1970 || p.Year > 9999 {
		return shared.ErrInvalidInput
	}
	if p.Month < time.January || p.Month > time.December {
		return shared.ErrInvalidInput
	}
	return nil
}

// String returns "YYYY-MM"
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
