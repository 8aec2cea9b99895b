package reporting

import (
	"context"
	"time"

	invitationsDomain "github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	meetingsDomain "github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	membersDomain "github.com/felixgeelhaar/gatherly/internal/members/domain"
	"github.com/google/uuid"
)

// Counts are paid invitation counts over a range. A paid invitation is a
// confirmed invitation with a positive amount; People counts their distinct
// invitee emails.
type Counts struct {
	Invitations int `json:"paidInvitations"`
	People      int `json:"paidPeople"`
}

// CountStore counts an inviter's paid invitations confirmed inside a bucket.
type CountStore interface {
	CountPaid(ctx context.Context, inviterID uuid.UUID, bucket Bucket) (Counts, error)
}

// BucketCounts is one entry of a windowed series.
type BucketCounts struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Counts
}

// WindowedCounts is the report for one inviter and window. Series has a fixed
// length per window and includes empty buckets.
type WindowedCounts struct {
	Window   Window         `json:"window"`
	Timezone string         `json:"timezone"`
	Total    Counts         `json:"total"`
	Series   []BucketCounts `json:"series"`
}

// Reporter builds rosters and windowed counts.
type Reporter struct {
	invitations invitationsDomain.Repository
	meetings    meetingsDomain.Repository
	members     membersDomain.Repository
	counts      CountStore
	loc         *time.Location
	now         func() time.Time
}

// NewReporter creates a Reporter whose day boundaries are midnights in loc.
func NewReporter(
	invitations invitationsDomain.Repository,
	meetings meetingsDomain.Repository,
	members membersDomain.Repository,
	counts CountStore,
	loc *time.Location,
) *Reporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Reporter{
		invitations: invitations,
		meetings:    meetings,
		members:     members,
		counts:      counts,
		loc:         loc,
		now:         time.Now,
	}
}

// RosterFor returns the roster of a meeting that has not been deleted.
func (r *Reporter) RosterFor(ctx context.Context, meetingID uuid.UUID) (*Roster, error) {
	meeting, err := r.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil || meeting.IsDeleted() {
		return nil, meetingsDomain.ErrMeetingNotFound
	}

	invitations, err := r.invitations.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	var attendees []*membersDomain.Member
	if ids := meeting.Attendees(); len(ids) > 0 {
		if attendees, err = r.members.FindByIDs(ctx, ids); err != nil {
			return nil, err
		}
	}

	roster := BuildRoster(invitations, attendees)
	return &roster, nil
}

// WindowedCounts counts the inviter's paid invitations per bucket of w, with
// one query per bucket and one for the distinct total.
func (r *Reporter) WindowedCounts(ctx context.Context, inviterID uuid.UUID, w Window) (*WindowedCounts, error) {
	now := r.now()
	buckets := Buckets(w, now, r.loc)

	out := &WindowedCounts{
		Window:   w,
		Timezone: now.In(r.loc).Format("-07:00"),
		Series:   make([]BucketCounts, 0, len(buckets)),
	}
	for _, b := range buckets {
		c, err := r.counts.CountPaid(ctx, inviterID, b)
		if err != nil {
			return nil, err
		}
		out.Series = append(out.Series, BucketCounts{Label: b.Label, Start: b.Start, End: b.End, Counts: c})
	}

	if len(buckets) == 1 {
		out.Total = out.Series[0].Counts
		return out, nil
	}
	total, err := r.counts.CountPaid(ctx, inviterID, Span(buckets))
	if err != nil {
		return nil, err
	}
	out.Total = total
	return out, nil
}
