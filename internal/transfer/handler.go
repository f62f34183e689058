package transfer

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/kudos-points/internal/auth"
	"github.com/frahmantamala/kudos-points/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Send(ctx context.Context, actor *auth.User, dto SendPointsDTO) (*TransferWithAccounts, error)
	History(ctx context.Context, limit, offset int) ([]*TransferWithAccounts, error)
	Recent(ctx context.Context, n int) ([]*TransferWithAccounts, error)
	ForAccount(ctx context.Context, actor *auth.User, accountID string, limit, offset int) ([]*TransferWithAccounts, error)
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

// SendPoints handles POST /transfers. An omitted sender_id means the caller.
func (h *Handler) SendPoints(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("SendPoints: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto SendPointsDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Debug("SendPoints: invalid request body", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	if dto.SenderID == "" {
		dto.SenderID = user.ID
	}

	t, err := h.Service.Send(r.Context(), user, dto)
	if err != nil {
		h.RequestLogger(r).Info("SendPoints: transfer rejected", "error", err, "receiver_id", dto.ReceiverID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := h.Pagination(r)
	transfers, err := h.Service.History(r.Context(), limit, offset)
	if err != nil {
		h.RequestLogger(r).Error("ListTransfers: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, TransfersResponse{Transfers: transfers, Limit: limit, Offset: offset})
}

func (h *Handler) RecentTransfers(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			n = parsed
		}
	}

	transfers, err := h.Service.Recent(r.Context(), n)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, TransfersResponse{Transfers: transfers, Limit: len(transfers)})
}

func (h *Handler) AccountTransfers(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := h.Pagination(r)
	transfers, err := h.Service.ForAccount(r.Context(), user, chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, TransfersResponse{Transfers: transfers, Limit: limit, Offset: offset})
}
