package reporting

import (
	"cmp"
	"slices"
	"time"

	invitationsDomain "github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	membersDomain "github.com/felixgeelhaar/gatherly/internal/members/domain"
	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	sharedDomain "github.com/felixgeelhaar/gatherly/internal/shared/domain"
	"github.com/google/uuid"
)

// View selects a roster subset.
type View string

const (
	ViewAll        View = "all"
	ViewInvited    View = "invited"
	ViewCommunity  View = "community"
	ViewRegistered View = "registered"
)

// ErrUnknownView is returned for view names ParseView does not know.
var ErrUnknownView = apperr.Validation("view must be one of all, invited, community, registered")

// ParseView parses a view name. Empty means all.
func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case "":
		return ViewAll, nil
	case ViewAll, ViewInvited, ViewCommunity, ViewRegistered:
		return v, nil
	}
	return "", ErrUnknownView
}

// Visitor is one roster row. Invitation rows carry InvitationID, attendee
// rows carry MemberID.
type Visitor struct {
	Source              View       `json:"source"`
	InvitationID        *uuid.UUID `json:"invitationId,omitempty"`
	MemberID            *uuid.UUID `json:"memberId,omitempty"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Mobile              string     `json:"mobile,omitempty"`
	BusinessCategory    string     `json:"businessCategory,omitempty"`
	BusinessSubcategory string     `json:"businessSubcategory,omitempty"`
	Amount              int64      `json:"amount"`
	PaymentID           string     `json:"paymentId,omitempty"`
	ConfirmedAt         *time.Time `json:"confirmedAt,omitempty"`
}

// Roster holds the three disjoint visitor views of a meeting.
type Roster struct {
	Invited    []Visitor `json:"invited"`
	Community  []Visitor `json:"community"`
	Registered []Visitor `json:"registered"`
}

// All concatenates the views without deduplicating by email.
func (r Roster) All() []Visitor {
	out := make([]Visitor, 0, len(r.Invited)+len(r.Community)+len(r.Registered))
	out = append(out, r.Invited...)
	out = append(out, r.Community...)
	return append(out, r.Registered...)
}

// View returns the rows of v.
func (r Roster) View(v View) []Visitor {
	switch v {
	case ViewInvited:
		return r.Invited
	case ViewCommunity:
		return r.Community
	case ViewRegistered:
		return r.Registered
	default:
		return r.All()
	}
}

// BuildRoster splits a meeting's records into views. Confirmed invitations
// with a fee are invited visitors and fee-waived ones are community visitors.
// Attendees whose email matches none of the meeting's invitations, in any
// status, are registered visitors.
func BuildRoster(invitations []*invitationsDomain.Invitation, attendees []*membersDomain.Member) Roster {
	r := Roster{Invited: []Visitor{}, Community: []Visitor{}, Registered: []Visitor{}}

	invitedEmails := make(map[string]struct{}, len(invitations))
	confirmed := make([]*invitationsDomain.Invitation, 0, len(invitations))
	for _, inv := range invitations {
		invitedEmails[inv.Email()] = struct{}{}
		if inv.IsConfirmed() {
			confirmed = append(confirmed, inv)
		}
	}
	slices.SortStableFunc(confirmed, func(a, b *invitationsDomain.Invitation) int {
		return cmp.Compare(confirmedAt(a).UnixNano(), confirmedAt(b).UnixNano())
	})

	for _, inv := range confirmed {
		id := inv.ID()
		invitee := inv.Invitee()
		row := Visitor{
			InvitationID:        &id,
			Name:                invitee.VisitorName,
			Email:               invitee.Email,
			Mobile:              invitee.Mobile,
			BusinessCategory:    invitee.BusinessCategory,
			BusinessSubcategory: invitee.BusinessSubcategory,
			Amount:              inv.Amount(),
			PaymentID:           inv.PaymentID(),
			ConfirmedAt:         inv.ConfirmedAt(),
		}
		if inv.IsFeeBearing() {
			row.Source = ViewInvited
			r.Invited = append(r.Invited, row)
		} else {
			row.Source = ViewCommunity
			r.Community = append(r.Community, row)
		}
	}

	for _, m := range attendees {
		if _, ok := invitedEmails[sharedDomain.NormalizeEmail(m.Email())]; ok {
			continue
		}
		id := m.ID()
		r.Registered = append(r.Registered, Visitor{
			Source:              ViewRegistered,
			MemberID:            &id,
			Name:                m.Name(),
			Email:               m.Email(),
			Mobile:              m.Mobile(),
			BusinessCategory:    m.BusinessCategory(),
			BusinessSubcategory: m.BusinessSubcategory(),
		})
	}
	return r
}

func confirmedAt(inv *invitationsDomain.Invitation) time.Time {
	if at := inv.ConfirmedAt(); at != nil {
		return *at
	}
	return inv.CreatedAt()
}
