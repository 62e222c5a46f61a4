package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/dmitrijs2005/userauth/internal/logging"
	"github.com/dmitrijs2005/userauth/internal/server/auth"
	"github.com/dmitrijs2005/userauth/internal/server/models"
)

// UserService is the business logic behind the handlers.
// *services.UserService satisfies it.
type UserService interface {
	UserLookup
	Register(ctx context.Context, userName, email, password string) (*models.User, error)
	Login(ctx context.Context, userName, password string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	FindByRole(ctx context.Context, role string) ([]*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	IssueToken(user *models.User, now time.Time) (string, error)
	RefreshToken(oldToken string, now time.Time) (string, error)
}

type handler struct {
	users    UserService
	validate *validator.Validate
	now      func() time.Time
	health   func(context.Context) error
	logger   logging.Logger
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, msg)
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "user registered", "id", u.ID, "username", u.UserName)
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if common.IsAuthError(err) {
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		h.fail(w, r, err)
		return
	}

	token, err := h.users.IssueToken(u, h.now())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	old := parseRefreshBody(body)
	if old == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	token, err := h.users.RefreshToken(old, h.now())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *handler) profile(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, found, err := h.users.FindByUserName(r.Context(), p.Subject)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	var (
		list []*models.User
		err  error
	)
	if role := r.URL.Query().Get("role"); role != "" {
		list, err = h.users.FindByRole(r.Context(), role)
	} else {
		list, err = h.users.ListUsers(r.Context())
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.fail(w, r, err)
		return
	}

	p, _ := auth.PrincipalFrom(r.Context())
	h.logger.Info(r.Context(), "user deleted", "id", id, "by", p.Subject)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.logger.Warn(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
