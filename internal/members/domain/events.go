package domain

import (
	sharedDomain "github.com/felixgeelhaar/gatherly/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "Member"

// MemberRegistered is emitted when a member registers.
type MemberRegistered struct {
	sharedDomain.BaseEvent
	MemberID  uuid.UUID `json:"member_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Community bool      `json:"community"`
}

// NewMemberRegistered creates a MemberRegistered event.
func NewMemberRegistered(m *Member) *MemberRegistered {
	return &MemberRegistered{
		BaseEvent: sharedDomain.NewBaseEvent(m.ID(), aggregateType, "members.member.registered", m.CreatedAt()),
		MemberID:  m.ID(),
		Name:      m.Name(),
		Email:     m.Email(),
		Community: m.IsCommunity(),
	}
}
