package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/gatherly/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "Meeting"

// Routing keys for meeting events.
const (
	RoutingKeyCreated            = "meetings.meeting.created"
	RoutingKeyUpdated            = "meetings.meeting.updated"
	RoutingKeyFeeChanged         = "meetings.meeting.fee_changed"
	RoutingKeyDeleted            = "meetings.meeting.deleted"
	RoutingKeyAttendeeRegistered = "meetings.meeting.attendee_registered"
)

// MeetingCreated is emitted when a meeting is created.
type MeetingCreated struct {
	sharedDomain.BaseEvent
	MeetingID   uuid.UUID `json:"meeting_id"`
	OrganizerID uuid.UUID `json:"organizer_id"`
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
	VisitorFee  int64     `json:"visitor_fee"`
	Currency    string    `json:"currency"`
}

// NewMeetingCreated creates a MeetingCreated event.
func NewMeetingCreated(m *Meeting) *MeetingCreated {
	return &MeetingCreated{
		BaseEvent:   sharedDomain.NewBaseEvent(m.ID(), aggregateType, RoutingKeyCreated, m.CreatedAt()),
		MeetingID:   m.ID(),
		OrganizerID: m.OrganizerID(),
		Title:       m.Title(),
		ScheduledAt: m.ScheduledAt(),
		VisitorFee:  m.VisitorFee(),
		Currency:    m.Currency(),
	}
}

// MeetingUpdated is emitted when the descriptive fields change.
type MeetingUpdated struct {
	sharedDomain.BaseEvent
	MeetingID   uuid.UUID `json:"meeting_id"`
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// NewMeetingUpdated creates a MeetingUpdated event.
func NewMeetingUpdated(m *Meeting) *MeetingUpdated {
	return &MeetingUpdated{
		BaseEvent:   sharedDomain.NewBaseEvent(m.ID(), aggregateType, RoutingKeyUpdated, m.UpdatedAt()),
		MeetingID:   m.ID(),
		Title:       m.Title(),
		ScheduledAt: m.ScheduledAt(),
	}
}

// MeetingFeeChanged is emitted when the visitor fee changes.
type MeetingFeeChanged struct {
	sharedDomain.BaseEvent
	MeetingID   uuid.UUID `json:"meeting_id"`
	PreviousFee int64     `json:"previous_fee"`
	VisitorFee  int64     `json:"visitor_fee"`
	Currency    string    `json:"currency"`
}

// NewMeetingFeeChanged creates a MeetingFeeChanged event.
func NewMeetingFeeChanged(m *Meeting, previous int64) *MeetingFeeChanged {
	return &MeetingFeeChanged{
		BaseEvent:   sharedDomain.NewBaseEvent(m.ID(), aggregateType, RoutingKeyFeeChanged, m.UpdatedAt()),
		MeetingID:   m.ID(),
		PreviousFee: previous,
		VisitorFee:  m.VisitorFee(),
		Currency:    m.Currency(),
	}
}

// MeetingDeleted is emitted when a meeting is soft-deleted.
type MeetingDeleted struct {
	sharedDomain.BaseEvent
	MeetingID uuid.UUID `json:"meeting_id"`
}

// NewMeetingDeleted creates a MeetingDeleted event.
func NewMeetingDeleted(m *Meeting) *MeetingDeleted {
	return &MeetingDeleted{
		BaseEvent: sharedDomain.NewBaseEvent(m.ID(), aggregateType, RoutingKeyDeleted, m.UpdatedAt()),
		MeetingID: m.ID(),
	}
}

// AttendeeRegistered is emitted when a member registers for a meeting.
type AttendeeRegistered struct {
	sharedDomain.BaseEvent
	MeetingID uuid.UUID `json:"meeting_id"`
	MemberID  uuid.UUID `json:"member_id"`
}

// NewAttendeeRegistered creates an AttendeeRegistered event.
func NewAttendeeRegistered(m *Meeting, memberID uuid.UUID, at time.Time) *AttendeeRegistered {
	return &AttendeeRegistered{
		BaseEvent: sharedDomain.NewBaseEvent(m.ID(), aggregateType, RoutingKeyAttendeeRegistered, at),
		MeetingID: m.ID(),
		MemberID:  memberID,
	}
}
