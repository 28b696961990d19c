package handler

import (
	"context"      // provides context with cancellation for DB calls
	"database/sql" // SQL database interactions
	"errors"       // sentinel error comparisons
	"log"          // internal error detail is logged, never returned to clients
	"net/http"     // HTTP status codes and primitives
	"strings"      // string manipulation utilities
	"time"         // timeouts for DB calls and token lifetimes

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/todo-list-api/internal/config"     // app configuration
	"github.com/iliyamo/todo-list-api/internal/repository" // DB repositories
	"github.com/iliyamo/todo-list-api/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}
type authResp struct {
	Token string   `json:"token"`
	User  userPart `json:"user"`
}

func (h *AuthHandler) tokenTTL() time.Duration {
	return time.Duration(h.Cfg.TokenTTLHours) * time.Hour
}

// Register: create user and return a token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}
	if len(req.Username) < 3 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must be at least 3 characters"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Best-effort existence check for a friendly conflict answer; the unique
	// index on username is the authoritative guard under concurrent
	// registrations and surfaces below as ErrUsernameExists.
	if _, err := h.Users.GetByUsername(ctx, req.Username); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("auth: username lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	uid, err := h.Users.Create(ctx, req.Username, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
		}
		log.Printf("auth: create user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, req.Username, h.tokenTTL())
	if err != nil {
		log.Printf("auth: issue token failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	return c.JSON(http.StatusCreated, authResp{
		Token: access.Token,
		User:  userPart{ID: uid, Username: req.Username},
	})
}

// Login: verify credentials and return a fresh token.  A missing user and
// a wrong password produce the same answer.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		log.Printf("auth: user lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, h.tokenTTL())
	if err != nil {
		log.Printf("auth: issue token failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	return c.JSON(http.StatusOK, authResp{
		Token: access.Token,
		User:  userPart{ID: u.ID, Username: u.Username},
	})
}
