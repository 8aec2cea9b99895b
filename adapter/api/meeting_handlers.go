package api

import (
	"net/http"
	"time"

	invitationCommands "github.com/felixgeelhaar/gatherly/internal/invitations/application/commands"
	meetingCommands "github.com/felixgeelhaar/gatherly/internal/meetings/application/commands"
	meetingQueries "github.com/felixgeelhaar/gatherly/internal/meetings/application/queries"
	memberCommands "github.com/felixgeelhaar/gatherly/internal/members/application/commands"
	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	"github.com/google/uuid"
)

type registerMemberRequest struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Mobile              string `json:"mobile"`
	BusinessCategory    string `json:"businessCategory"`
	BusinessSubcategory string `json:"businessSubcategory"`
	Community           bool   `json:"community"`
}

// registerMember handles POST /api/v1/members
func (s *Server) registerMember(w http.ResponseWriter, r *http.Request) {
	var req registerMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.c.RegisterMemberHandler.Handle(r.Context(), memberCommands.RegisterMemberCommand{
		ActorID:             memberID(r.Context()),
		Name:                req.Name,
		Email:               req.Email,
		Mobile:              req.Mobile,
		BusinessCategory:    req.BusinessCategory,
		BusinessSubcategory: req.BusinessSubcategory,
		Community:           req.Community,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	member, err := s.c.GetMemberHandler.Handle(r.Context(), res.MemberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, "member registered", member)
}

// getMember handles GET /api/v1/members/{memberID}
func (s *Server) getMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "memberID")
	if err != nil {
		writeError(w, err)
		return
	}
	member, err := s.c.GetMemberHandler.Handle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "member", member)
}

// listCommunity handles GET /api/v1/members/community
func (s *Server) listCommunity(w http.ResponseWriter, r *http.Request) {
	members, err := s.c.ListCommunityHandler.Handle(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "community members", members)
}

type createMeetingRequest struct {
	Title       string    `json:"title"`
	Speaker     string    `json:"speaker"`
	Place       string    `json:"place"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Agenda      string    `json:"agenda"`
	VisitorFee  int64     `json:"visitorFee"`
	Currency    string    `json:"currency"`
	// InviteCommunity invites every community member once the meeting exists.
	InviteCommunity bool `json:"inviteCommunity"`
}

type createMeetingResponse struct {
	*meetingQueries.MeetingDTO
	Community *invitationCommands.InviteCommunityResult `json:"community,omitempty"`
}

// createMeeting handles POST /api/v1/meetings
func (s *Server) createMeeting(w http.ResponseWriter, r *http.Request) {
	var req createMeetingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = s.c.Config.Payment.Currency
	}
	res, err := s.c.CreateMeetingHandler.Handle(r.Context(), meetingCommands.CreateMeetingCommand{
		OrganizerID: memberID(r.Context()),
		Title:       req.Title,
		Speaker:     req.Speaker,
		Place:       req.Place,
		ScheduledAt: req.ScheduledAt,
		Agenda:      req.Agenda,
		VisitorFee:  req.VisitorFee,
		Currency:    currency,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	meeting, err := s.c.GetMeetingHandler.Handle(r.Context(), res.MeetingID)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := createMeetingResponse{MeetingDTO: meeting}

	if req.InviteCommunity {
		community, err := s.c.InviteCommunityHandler.Handle(r.Context(), invitationCommands.InviteCommunityCommand{
			MeetingID: res.MeetingID,
			InviterID: memberID(r.Context()),
		})
		if err != nil {
			writeErrorData(w, err, resp)
			return
		}
		resp.Community = community
	}
	writeOK(w, http.StatusCreated, "meeting created", resp)
}

// listMeetings handles GET /api/v1/meetings
//
// Query parameters: includeDeleted=true, from=<RFC3339>.
func (s *Server) listMeetings(w http.ResponseWriter, r *http.Request) {
	q := meetingQueries.ListMeetingsQuery{
		IncludeDeleted: r.URL.Query().Get("includeDeleted") == "true",
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			writeError(w, apperr.Validation("from must be an RFC 3339 timestamp"))
			return
		}
		q.From = t
	}

	meetings, err := s.c.ListMeetingsHandler.Handle(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "meetings", meetings)
}

// getMeeting handles GET /api/v1/meetings/{meetingID}
func (s *Server) getMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "meetingID")
	if err != nil {
		writeError(w, err)
		return
	}
	meeting, err := s.c.GetMeetingHandler.Handle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "meeting", meeting)
}

type updateMeetingRequest struct {
	Title       *string    `json:"title"`
	Speaker     *string    `json:"speaker"`
	Place       *string    `json:"place"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	Agenda      *string    `json:"agenda"`
	VisitorFee  *int64     `json:"visitorFee"`
}

// updateMeeting handles PATCH /api/v1/meetings/{meetingID}
func (s *Server) updateMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "meetingID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateMeetingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.c.UpdateMeetingHandler.Handle(r.Context(), meetingCommands.UpdateMeetingCommand{
		MeetingID:   id,
		ActorID:     memberID(r.Context()),
		Title:       req.Title,
		Speaker:     req.Speaker,
		Place:       req.Place,
		ScheduledAt: req.ScheduledAt,
		Agenda:      req.Agenda,
		VisitorFee:  req.VisitorFee,
	}); err != nil {
		writeError(w, err)
		return
	}

	meeting, err := s.c.GetMeetingHandler.Handle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "meeting updated", meeting)
}

// deleteMeeting handles DELETE /api/v1/meetings/{meetingID}
func (s *Server) deleteMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "meetingID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.c.DeleteMeetingHandler.Handle(r.Context(), meetingCommands.DeleteMeetingCommand{
		MeetingID: id,
		ActorID:   memberID(r.Context()),
	}); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "meeting deleted", nil)
}

type registerAttendeeRequest struct {
	// MemberID defaults to the caller.
	MemberID *uuid.UUID `json:"memberId"`
}

// registerAttendee handles POST /api/v1/meetings/{meetingID}/attendees
func (s *Server) registerAttendee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "meetingID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req registerAttendeeRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	attendee := memberID(r.Context())
	if req.MemberID != nil {
		attendee = *req.MemberID
	}

	res, err := s.c.RegisterAttendeeHandler.Handle(r.Context(), meetingCommands.RegisterAttendeeCommand{
		MeetingID: id,
		MemberID:  attendee,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	message := "attendee registered"
	if !res.Registered {
		message = "attendee already registered"
	}
	writeOK(w, http.StatusOK, message, map[string]any{
		"meetingId":  id,
		"memberId":   attendee,
		"registered": res.Registered,
	})
}
