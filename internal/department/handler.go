package department

import (
	"context"
	"net/http"

	"github.com/frahmantamala/kudos-points/internal/auth"
	"github.com/frahmantamala/kudos-points/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListDepartments(ctx context.Context) ([]string, error)
	Rankings(ctx context.Context) ([]Ranking, error)
	Distribute(ctx context.Context, actor *auth.User, department string, totalPoints int, reason string) (*DistributionResult, error)
	AdjustDepartmentRecord(ctx context.Context, actor *auth.User, department string, amount int, reason string) (*Adjustment, error)
	ListAdjustments(ctx context.Context, actor *auth.User, department string) ([]*Adjustment, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	names, err := h.Service.ListDepartments(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	h.WriteJSON(w, http.StatusOK, DepartmentsResponse{Departments: names})
}

func (h *Handler) GetRankings(w http.ResponseWriter, r *http.Request) {
	rankings, err := h.Service.Rankings(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, RankingsResponse{Rankings: rankings})
}

// DistributeQuarterly handles the positive-only department distribution.
func (h *Handler) DistributeQuarterly(w http.ResponseWriter, r *http.Request) {
	h.distribute(w, r, DistributeDTO.Validate)
}

// DistributeTeam handles team distribution, where a negative total deducts from every member.
func (h *Handler) DistributeTeam(w http.ResponseWriter, r *http.Request) {
	h.distribute(w, r, DistributeDTO.ValidateSigned)
}

func (h *Handler) distribute(w http.ResponseWriter, r *http.Request, validate func(DistributeDTO) error) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("Distribute: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto DistributeDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := validate(dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.Distribute(r.Context(), user, chi.URLParam(r, "department"), *dto.TotalPoints, dto.Reason)
	if err != nil {
		h.RequestLogger(r).Warn("Distribute: service error", "error", err, "department", chi.URLParam(r, "department"))
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) AdjustDepartment(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto AdjustDepartmentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	adj, err := h.Service.AdjustDepartmentRecord(r.Context(), user, chi.URLParam(r, "department"), *dto.AdjustmentAmount, dto.Reason)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, adj)
}

func (h *Handler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	adjustments, err := h.Service.ListAdjustments(r.Context(), user, r.URL.Query().Get("department"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, AdjustmentsResponse{Adjustments: adjustments})
}
