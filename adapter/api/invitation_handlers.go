package api

import (
	"errors"
	"io"
	"net/http"

	invitationCommands "github.com/felixgeelhaar/gatherly/internal/invitations/application/commands"
	invitationQueries "github.com/felixgeelhaar/gatherly/internal/invitations/application/queries"
	"github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	"github.com/felixgeelhaar/gatherly/internal/reporting"
	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
)

type createInvitationRequest struct {
	Email               string `json:"email"`
	VisitorName         string `json:"visitorName"`
	BusinessCategory    string `json:"businessCategory"`
	BusinessSubcategory string `json:"businessSubcategory"`
	Mobile              string `json:"mobile"`
}

// createInvitation handles POST /api/v1/meetings/{meetingID}/invitations
//
// When the gateway fails after the invitation is stored, the response is a
// 502 that still carries the pending invitation so the caller can retry the
// payment link.
func (s *Server) createInvitation(w http.ResponseWriter, r *http.Request) {
	meetingID, err := pathID(r, "meetingID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req createInvitationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.c.CreateInvitationHandler.Handle(r.Context(), invitationCommands.CreateInvitationCommand{
		MeetingID:           meetingID,
		InviterID:           memberID(r.Context()),
		Email:               req.Email,
		VisitorName:         req.VisitorName,
		BusinessCategory:    req.BusinessCategory,
		BusinessSubcategory: req.BusinessSubcategory,
		Mobile:              req.Mobile,
	})
	if err != nil {
		if res != nil && res.Invitation != nil {
			writeErrorData(w, err, invitationQueries.ToDTO(res.Invitation))
			return
		}
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, "invitation created", invitationQueries.ToDTO(res.Invitation))
}

// listInvitations handles GET /api/v1/meetings/{meetingID}/invitations?status=
func (s *Server) listInvitations(w http.ResponseWriter, r *http.Request) {
	meetingID, err := pathID(r, "meetingID")
	if err != nil {
		writeError(w, err)
		return
	}
	q := invitationQueries.ListInvitationsQuery{MeetingID: meetingID}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.Status(raw)
		if !status.IsValid() {
			writeError(w, domain.ErrInvalidStatus)
			return
		}
		q.Status = status
	}

	invitations, err := s.c.ListInvitationsHandler.Handle(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "invitations", invitations)
}

// inviteCommunity handles POST /api/v1/meetings/{meetingID}/invitations/community
func (s *Server) inviteCommunity(w http.ResponseWriter, r *http.Request) {
	meetingID, err := pathID(r, "meetingID")
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.c.InviteCommunityHandler.Handle(r.Context(), invitationCommands.InviteCommunityCommand{
		MeetingID: meetingID,
		InviterID: memberID(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "community invited", res)
}

// getInvitation handles GET /api/v1/invitations/{invitationID}
func (s *Server) getInvitation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "invitationID")
	if err != nil {
		writeError(w, err)
		return
	}
	inv, err := s.c.GetInvitationHandler.Handle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "invitation", inv)
}

// issuePaymentLink handles POST /api/v1/invitations/{invitationID}/payment-link
func (s *Server) issuePaymentLink(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "invitationID")
	if err != nil {
		writeError(w, err)
		return
	}
	inv, err := s.c.IssuePaymentLinkHandler.Handle(r.Context(), invitationCommands.IssuePaymentLinkCommand{
		InvitationID: id,
		ActorID:      memberID(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "payment link issued", invitationQueries.ToDTO(inv))
}

type cancelInvitationRequest struct {
	Reason string `json:"reason"`
}

// cancelInvitation handles POST /api/v1/invitations/{invitationID}/cancel
func (s *Server) cancelInvitation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "invitationID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req cancelInvitationRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	inv, err := s.c.CancelInvitationHandler.Handle(r.Context(), invitationCommands.CancelInvitationCommand{
		InvitationID: id,
		ActorID:      memberID(r.Context()),
		Reason:       req.Reason,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "invitation cancelled", invitationQueries.ToDTO(inv))
}

// roster handles GET /api/v1/meetings/{meetingID}/roster?view=
func (s *Server) roster(w http.ResponseWriter, r *http.Request) {
	meetingID, err := pathID(r, "meetingID")
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := reporting.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		writeError(w, err)
		return
	}

	roster, err := s.c.Reporter.RosterFor(r.Context(), meetingID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "roster", roster.View(view))
}

// reconcileRoster handles POST /api/v1/meetings/{meetingID}/roster/reconcile
func (s *Server) reconcileRoster(w http.ResponseWriter, r *http.Request) {
	meetingID, err := pathID(r, "meetingID")
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.c.ReconcileRosterHandler.Handle(r.Context(), invitationCommands.ReconcileRosterCommand{
		MeetingID: meetingID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "roster reconciled", res)
}

// invitationReport handles GET /api/v1/reports/invitations?window=
//
// The report always covers the calling member's invitations.
func (s *Server) invitationReport(w http.ResponseWriter, r *http.Request) {
	window, err := reporting.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := s.c.Reporter.WindowedCounts(r.Context(), memberID(r.Context()), window)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "invitation report", report)
}

// paymentWebhook handles POST /api/v1/webhooks/payments
//
// Every verified delivery is acknowledged with a 200, including ones that
// are ignored, so the gateway stops retrying.
func (s *Server) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, apperr.Validation("webhook body too large"))
			return
		}
		writeError(w, apperr.Validation("failed to read webhook body"))
		return
	}

	res, err := s.c.ConfirmFromWebhookHandler.Handle(r.Context(), invitationCommands.ConfirmFromWebhookCommand{
		Body:      body,
		Signature: r.Header.Get(s.c.Config.Payment.SignatureHeader),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, string(res.Outcome), res)
}

// simulatePayment handles POST /api/v1/dev/payment-links/{paymentLinkID}/simulate
func (s *Server) simulatePayment(w http.ResponseWriter, r *http.Request) {
	res, err := s.c.SimulateConfirmationHandler.Handle(r.Context(), invitationCommands.SimulateConfirmationCommand{
		PaymentLinkID: r.PathValue("paymentLinkID"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, string(res.Outcome), res)
}
