package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/holidaze/internal/config"
	"github.com/iliyamo/holidaze/internal/middleware"
	"github.com/iliyamo/holidaze/internal/model"
	"github.com/iliyamo/holidaze/internal/repository"
	"github.com/iliyamo/holidaze/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	Profile model.Profile `json:"profile"`
	Access  tokenPart     `json:"access"`
	Refresh tokenPart     `json:"refresh"`
}

// issue creates an access/refresh pair for u and stores the refresh hash.
func (h *AuthHandler) issue(c echo.Context, u model.User) (authResp, error) {
	ctx, cancel := dbCtx(c)
	defer cancel()

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Name, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		Profile: u.Profile(),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Register: create user and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req model.RegisterRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	role := model.RoleCustomer
	if req.VenueManager {
		role = model.RoleManager
	}
	u := model.User{
		Name:   strings.TrimSpace(req.Name),
		Email:  strings.ToLower(strings.TrimSpace(req.Email)),
		Role:   role,
		Bio:    req.Bio,
		Avatar: req.Avatar,
		Banner: req.Banner,
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, u, req.Password, h.Cfg.BcryptCost)
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return errJSON(c, http.StatusConflict, "email already exists")
	case errors.Is(err, repository.ErrNameExists):
		return errJSON(c, http.StatusConflict, "profile name already exists")
	case err != nil:
		return internalError(c, "create user failed", err)
	}
	u.ID = uid

	resp, err := h.issue(c, u)
	if err != nil {
		return internalError(c, "issue tokens failed", err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login: verify and return new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req model.LoginRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repository.ErrNotFound) {
		utils.BurnPasswordCheck(req.Password)
		return errJSON(c, http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return internalError(c, "query failed", err)
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return errJSON(c, http.StatusUnauthorized, "invalid credentials")
	}

	resp, err := h.issue(c, u)
	if err != nil {
		return internalError(c, "issue tokens failed", err)
	}
	return c.JSON(http.StatusOK, resp)
}

func refreshFrom(c echo.Context) string {
	var req model.RefreshRequest
	_ = c.Bind(&req)
	return strings.TrimSpace(req.RefreshToken)
}

// Refresh: revoke the presented refresh token and issue a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := refreshFrom(c)
	if raw == "" {
		return errJSON(c, http.StatusBadRequest, "refresh_token required")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	newRef, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return internalError(c, "issue refresh failed", err)
	}
	userID, err := h.Tokens.Rotate(ctx, utils.HashRefreshRaw(raw), utils.HashRefreshRaw(newRef.Raw), newRef.Exp)
	if errors.Is(err, repository.ErrNotFound) {
		return errJSON(c, http.StatusUnauthorized, "invalid refresh")
	}
	if err != nil {
		return internalError(c, "rotate refresh failed", err)
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return internalError(c, "load user failed", err)
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Name, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return internalError(c, "issue access failed", err)
	}
	return c.JSON(http.StatusOK, authResp{
		Profile: u.Profile(),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: newRef.Raw, Expires: newRef.Exp},
	})
}

// RefreshAccess returns a new access token without rotating the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	raw := refreshFrom(c)
	if raw == "" {
		return errJSON(c, http.StatusBadRequest, "refresh_token required")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, utils.HashRefreshRaw(raw))
	if errors.Is(err, repository.ErrNotFound) {
		return errJSON(c, http.StatusUnauthorized, "invalid refresh")
	}
	if err != nil {
		return internalError(c, "validate refresh failed", err)
	}
	u, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return errJSON(c, http.StatusUnauthorized, "invalid refresh")
	}
	if err != nil {
		return internalError(c, "load user failed", err)
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Name, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return internalError(c, "issue access failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes one refresh token when the body carries it, otherwise
// every refresh token of the bearer's user. The route is mounted with
// OptionalAuth so either credential is enough.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw := refreshFrom(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	if raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return errJSON(c, http.StatusUnauthorized, "invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return internalError(c, "logout failed", err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	if p, ok := middleware.PrincipalFrom(c); ok {
		if err := h.Tokens.RevokeAllForUser(ctx, p.UserID); err != nil {
			return internalError(c, "logout failed", err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	return errJSON(c, http.StatusBadRequest, "provide Authorization header or refresh_token")
}

// Me returns the caller's principal.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok, err := caller(c)
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
