package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/members/domain"
	"github.com/google/uuid"
)

// MemberDTO is a data transfer object for members.
type MemberDTO struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Mobile              string    `json:"mobile,omitempty"`
	BusinessCategory    string    `json:"businessCategory,omitempty"`
	BusinessSubcategory string    `json:"businessSubcategory,omitempty"`
	Community           bool      `json:"community"`
	CreatedAt           time.Time `json:"createdAt"`
}

// ToDTO projects a member.
func ToDTO(m *domain.Member) MemberDTO {
	return MemberDTO{
		ID:                  m.ID(),
		Name:                m.Name(),
		Email:               m.Email(),
		Mobile:              m.Mobile(),
		BusinessCategory:    m.BusinessCategory(),
		BusinessSubcategory: m.BusinessSubcategory(),
		Community:           m.IsCommunity(),
		CreatedAt:           m.CreatedAt(),
	}
}

// GetMemberHandler loads a single member.
type GetMemberHandler struct {
	repo domain.Repository
}

// NewGetMemberHandler creates a new GetMemberHandler.
func NewGetMemberHandler(repo domain.Repository) *GetMemberHandler {
	return &GetMemberHandler{repo: repo}
}

// Handle returns the member or domain.ErrMemberNotFound.
func (h *GetMemberHandler) Handle(ctx context.Context, id uuid.UUID) (*MemberDTO, error) {
	m, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrMemberNotFound
	}
	dto := ToDTO(m)
	return &dto, nil
}

// ListCommunityHandler lists community members.
type ListCommunityHandler struct {
	repo domain.Repository
}

// NewListCommunityHandler creates a new ListCommunityHandler.
func NewListCommunityHandler(repo domain.Repository) *ListCommunityHandler {
	return &ListCommunityHandler{repo: repo}
}

// Handle returns every community member.
func (h *ListCommunityHandler) Handle(ctx context.Context) ([]MemberDTO, error) {
	members, err := h.repo.ListCommunity(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]MemberDTO, 0, len(members))
	for _, m := range members {
		dtos = append(dtos, ToDTO(m))
	}
	return dtos, nil
}
