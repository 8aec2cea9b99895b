package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	sharedDomain "github.com/felixgeelhaar/gatherly/internal/shared/domain"
	"github.com/google/uuid"
)

// DefaultCurrency is used when a meeting does not name one.
const DefaultCurrency = "INR"

var (
	ErrMeetingNotFound        = apperr.NotFound("meeting not found")
	ErrMeetingEmptyTitle      = apperr.Validation("meeting title cannot be empty")
	ErrMeetingEmptySpeaker    = apperr.Validation("meeting speaker cannot be empty")
	ErrMeetingEmptyPlace      = apperr.Validation("meeting place cannot be empty")
	ErrMeetingEmptyAgenda     = apperr.Validation("meeting agenda cannot be empty")
	ErrMeetingMissingTime     = apperr.Validation("meeting date and time are required")
	ErrMeetingNegativeFee     = apperr.Validation("visitor fee cannot be negative")
	ErrMeetingInvalidCurrency = apperr.Validation("currency must be a 3-letter ISO code")
	ErrMeetingDeleted         = apperr.NotFound("meeting has been deleted")
)

// Details are the descriptive fields an organizer edits.
type Details struct {
	Title       string
	Speaker     string
	Place       string
	ScheduledAt time.Time
	Agenda      string
}

func (d Details) normalized() (Details, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Speaker = strings.TrimSpace(d.Speaker)
	d.Place = strings.TrimSpace(d.Place)
	d.Agenda = strings.TrimSpace(d.Agenda)

	switch {
	case d.Title == "":
		return d, ErrMeetingEmptyTitle
	case d.Speaker == "":
		return d, ErrMeetingEmptySpeaker
	case d.Place == "":
		return d, ErrMeetingEmptyPlace
	case d.Agenda == "":
		return d, ErrMeetingEmptyAgenda
	case d.ScheduledAt.IsZero():
		return d, ErrMeetingMissingTime
	}
	d.ScheduledAt = d.ScheduledAt.UTC()
	return d, nil
}

func (d Details) equal(o Details) bool {
	return d.Title == o.Title && d.Speaker == o.Speaker && d.Place == o.Place &&
		d.Agenda == o.Agenda && d.ScheduledAt.Equal(o.ScheduledAt)
}

// Meeting is a community meeting with a visitor fee, its registered attendees
// and the ordered roster of confirmed invitations.
//
// The roster is loaded for reading only. It is appended to through
// Repository.AppendToRoster by the invitation lifecycle and never by Save.
type Meeting struct {
	sharedDomain.BaseAggregateRoot
	organizerID uuid.UUID
	details     Details
	visitorFee  int64
	currency    string
	deletedAt   *time.Time
	attendees   []uuid.UUID
	invited     []uuid.UUID
}

// NewMeeting creates a meeting. visitorFee is in minor currency units; zero
// means visitors attend free.
func NewMeeting(organizerID uuid.UUID, details Details, visitorFee int64, currency string, now time.Time) (*Meeting, error) {
	details, err := details.normalized()
	if err != nil {
		return nil, err
	}
	if visitorFee < 0 {
		return nil, ErrMeetingNegativeFee
	}
	currency, err = normalizeCurrency(currency)
	if err != nil {
		return nil, err
	}

	m := &Meeting{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now),
		organizerID:       organizerID,
		details:           details,
		visitorFee:        visitorFee,
		currency:          currency,
	}
	m.AddDomainEvent(NewMeetingCreated(m))
	return m, nil
}

func normalizeCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return DefaultCurrency, nil
	}
	if len(currency) != 3 {
		return "", ErrMeetingInvalidCurrency
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return "", ErrMeetingInvalidCurrency
		}
	}
	return currency, nil
}

func (m *Meeting) OrganizerID() uuid.UUID { return m.organizerID }
func (m *Meeting) Details() Details       { return m.details }
func (m *Meeting) Title() string          { return m.details.Title }
func (m *Meeting) ScheduledAt() time.Time { return m.details.ScheduledAt }
func (m *Meeting) VisitorFee() int64      { return m.visitorFee }
func (m *Meeting) Currency() string       { return m.currency }
func (m *Meeting) DeletedAt() *time.Time  { return m.deletedAt }
func (m *Meeting) IsDeleted() bool        { return m.deletedAt != nil }

// Attendees returns the registered member ids.
func (m *Meeting) Attendees() []uuid.UUID { return slices.Clone(m.attendees) }

// Invited returns the roster of confirmed invitation ids in the order they
// were appended.
func (m *Meeting) Invited() []uuid.UUID { return slices.Clone(m.invited) }

// HasInvited reports whether invitationID is on the roster.
func (m *Meeting) HasInvited(invitationID uuid.UUID) bool {
	return slices.Contains(m.invited, invitationID)
}

// Update replaces the descriptive fields.
func (m *Meeting) Update(details Details, now time.Time) error {
	if m.IsDeleted() {
		return ErrMeetingDeleted
	}
	details, err := details.normalized()
	if err != nil {
		return err
	}
	if details.equal(m.details) {
		return nil
	}
	m.details = details
	m.Touch(now)
	m.AddDomainEvent(NewMeetingUpdated(m))
	return nil
}

// SetVisitorFee changes the fee charged to future invitations. Invitations
// already created keep the amount they were created with.
func (m *Meeting) SetVisitorFee(fee int64, now time.Time) error {
	if m.IsDeleted() {
		return ErrMeetingDeleted
	}
	if fee < 0 {
		return ErrMeetingNegativeFee
	}
	if fee == m.visitorFee {
		return nil
	}
	previous := m.visitorFee
	m.visitorFee = fee
	m.Touch(now)
	m.AddDomainEvent(NewMeetingFeeChanged(m, previous))
	return nil
}

// RegisterAttendee adds a member to the attendee set. It returns false when
// the member is already registered.
func (m *Meeting) RegisterAttendee(memberID uuid.UUID, now time.Time) (bool, error) {
	if m.IsDeleted() {
		return false, ErrMeetingDeleted
	}
	if slices.Contains(m.attendees, memberID) {
		return false, nil
	}
	m.attendees = append(m.attendees, memberID)
	m.AddDomainEvent(NewAttendeeRegistered(m, memberID, now))
	return true, nil
}

// Delete soft-deletes the meeting.
func (m *Meeting) Delete(now time.Time) {
	if m.IsDeleted() {
		return
	}
	at := now.UTC()
	m.deletedAt = &at
	m.Touch(now)
	m.AddDomainEvent(NewMeetingDeleted(m))
}

// Snapshot carries persisted meeting state for rehydration.
type Snapshot struct {
	ID          uuid.UUID
	OrganizerID uuid.UUID
	Details     Details
	VisitorFee  int64
	Currency    string
	DeletedAt   *time.Time
	Attendees   []uuid.UUID
	Invited     []uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RehydrateMeeting recreates a meeting from persisted state.
func RehydrateMeeting(s Snapshot) *Meeting {
	return &Meeting{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(s.ID, s.CreatedAt, s.UpdatedAt),
		organizerID:       s.OrganizerID,
		details:           s.Details,
		visitorFee:        s.VisitorFee,
		currency:          s.Currency,
		deletedAt:         s.DeletedAt,
		attendees:         s.Attendees,
		invited:           s.Invited,
	}
}
