package circulation

import (
	"context"
	"net/http"

	"github.com/frahmantamala/kudos-points/internal/auth"
	"github.com/frahmantamala/kudos-points/internal/transport"
)

type ServiceAPI interface {
	TotalCirculation(ctx context.Context) (*CirculationResponse, error)
	SetCirculation(ctx context.Context, actor *auth.User, amount int) error
	SystemStats(ctx context.Context, actor *auth.User) (*SystemStats, error)
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

func (h *Handler) GetCirculation(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.TotalCirculation(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) SetCirculation(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("SetCirculation: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto SetCirculationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.SetCirculation(r.Context(), user, *dto.Amount); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":           true,
		"total_circulation": *dto.Amount,
	})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.Service.SystemStats(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}
