package account

import (
	"context"
	"net/http"

	"github.com/frahmantamala/kudos-points/internal"
	"github.com/frahmantamala/kudos-points/internal/auth"
	"github.com/frahmantamala/kudos-points/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetAccount(ctx context.Context, id string) (*Account, error)
	ListActiveWithStats(ctx context.Context) ([]*AccountWithStats, error)
	CreateAccount(ctx context.Context, actor *auth.User, dto CreateAccountDTO) (*Account, error)
	UpdateAccount(ctx context.Context, actor *auth.User, id string, dto UpdateAccountDTO) (*Account, error)
	SetBalance(ctx context.Context, actor *auth.User, id string, balance int) (*Account, error)
	SetBalanceDirect(ctx context.Context, actor *auth.User, id string, balance int) (*Account, error)
	RenameAccount(ctx context.Context, actor *auth.User, id string, dto RenameAccountDTO) (*Account, error)
	SetRole(ctx context.Context, actor *auth.User, id string, dto SetRoleDTO) (*Account, error)
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

func (h *Handler) principal(w http.ResponseWriter, r *http.Request, op string) (*auth.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error(op + ": user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return user, true
}

// GetCurrentAccount handles GET /me
func (h *Handler) GetCurrentAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r, "GetCurrentAccount")
	if !ok {
		return
	}

	acc, err := h.Service.GetAccount(r.Context(), user.ID)
	if err != nil {
		h.Logger.Error("GetCurrentAccount: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, acc)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r, "GetAccount"); !ok {
		return
	}

	acc, err := h.Service.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, acc)
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r, "ListAccounts"); !ok {
		return
	}

	accounts, err := h.Service.ListActiveWithStats(r.Context())
	if err != nil {
		h.RequestLogger(r).Error("ListAccounts: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, AccountsResponse{Accounts: accounts})
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r, "CreateAccount")
	if !ok {
		return
	}

	var dto CreateAccountDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	acc, err := h.Service.CreateAccount(r.Context(), user, dto)
	if err != nil {
		h.RequestLogger(r).Warn("CreateAccount: service error", "error", err, "account_id", dto.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, acc)
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r, "UpdateAccount")
	if !ok {
		return
	}

	var dto UpdateAccountDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	acc, err := h.Service.UpdateAccount(r.Context(), user, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, acc)
}

func (h *Handler) SetBalance(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r, "SetBalance")
	if !ok {
		return
	}

	var dto SetBalanceDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	acc, err := h.Service.SetBalance(r.Context(), user, chi.URLParam(r, "id"), *dto.Balance)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, acc)
}

// SetBalanceDirect handles the superadmin override, which may set a negative balance.
func (h *Handler) SetBalanceDirect(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r, "SetBalanceDirect")
	if !ok {
		return
	}

	var dto SetBalanceDirectDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	acc, err := h.Service.SetBalanceDirect(r.Context(), user, dto.UserID, *dto.Balance)
	if err != nil {
		h.RequestLogger(r).Warn("SetBalanceDirect: service error", "error", err, "account_id", dto.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"account": acc,
	})
}

func (h *Handler) RenameAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r, "RenameAccount")
	if !ok {
		return
	}

	var dto RenameAccountDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	acc, err := h.Service.RenameAccount(r.Context(), user, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, acc)
}

func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	user, ok := h.principal(w, r, "SetRole")
	if !ok {
		return
	}

	var dto SetRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	if id == user.ID && dto.Role != auth.RoleSuperAdmin {
		h.HandleServiceError(w, internal.NewValidationError("cannot demote yourself", internal.ErrCodeInvalidRole))
		return
	}

	acc, err := h.Service.SetRole(r.Context(), user, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, acc)
}
