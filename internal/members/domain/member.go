package domain

import (
	"strings"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	sharedDomain "github.com/felixgeelhaar/gatherly/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrMemberNotFound      = apperr.NotFound("member not found")
	ErrMemberEmptyName     = apperr.Validation("member name cannot be empty")
	ErrMemberInvalidEmail  = apperr.Validation("member email is invalid")
	ErrMemberInvalidMobile = apperr.Validation("mobile must be exactly 10 digits")
	ErrMemberEmailTaken    = apperr.Conflict("a member with this email already exists")
)

// Member is a registered user: an inviter, an attendee or a community member.
type Member struct {
	sharedDomain.BaseAggregateRoot
	name                string
	email               string
	mobile              string
	businessCategory    string
	businessSubcategory string
	community           bool
}

// Profile holds the editable member fields.
type Profile struct {
	Name                string
	Email               string
	Mobile              string
	BusinessCategory    string
	BusinessSubcategory string
	Community           bool
}

// NewMember registers a member.
func NewMember(p Profile, now time.Time) (*Member, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Mobile = strings.TrimSpace(p.Mobile)

	if p.Name == "" {
		return nil, ErrMemberEmptyName
	}
	if !sharedDomain.IsValidEmail(p.Email) {
		return nil, ErrMemberInvalidEmail
	}
	if p.Mobile != "" && !sharedDomain.IsValidMobile(p.Mobile) {
		return nil, ErrMemberInvalidMobile
	}

	m := &Member{
		BaseAggregateRoot:   sharedDomain.NewBaseAggregateRoot(now),
		name:                p.Name,
		email:               p.Email,
		mobile:              p.Mobile,
		businessCategory:    strings.TrimSpace(p.BusinessCategory),
		businessSubcategory: strings.TrimSpace(p.BusinessSubcategory),
		community:           p.Community,
	}
	m.AddDomainEvent(NewMemberRegistered(m))
	return m, nil
}

func (m *Member) Name() string                { return m.name }
func (m *Member) Email() string               { return m.email }
func (m *Member) Mobile() string              { return m.mobile }
func (m *Member) BusinessCategory() string    { return m.businessCategory }
func (m *Member) BusinessSubcategory() string { return m.businessSubcategory }
func (m *Member) IsCommunity() bool           { return m.community }

// RehydrateMember recreates a member from persisted state.
func RehydrateMember(id uuid.UUID, p Profile, createdAt, updatedAt time.Time) *Member {
	return &Member{
		BaseAggregateRoot:   sharedDomain.RehydrateBaseAggregateRoot(id, createdAt, updatedAt),
		name:                p.Name,
		email:               p.Email,
		mobile:              p.Mobile,
		businessCategory:    p.BusinessCategory,
		businessSubcategory: p.BusinessSubcategory,
		community:           p.Community,
	}
}
