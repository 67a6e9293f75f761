package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ProductCatalog/pkg/kit"
)

const (
	defaultTokenTTL = 15 * time.Minute
	userIDPrefix    = "u_"
)

var validate = kit.NewValidator()

type Server struct {
	Log      *zap.Logger
	Store    UserStore
	JWT      *TokenMaker
	TokenTTL time.Duration
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if !s.decodeCredentials(w, r, &req, &req.Email, &req.Password) {
		return
	}

	id := userIDPrefix + uuid.NewString()

	err := s.Store.Create(r.Context(), req.Email, req.Password, RoleUser, id)
	switch {
	case errors.Is(err, ErrEmailExists):
		kit.WriteError(w, r, http.StatusConflict, err.Error(), nil)
		return
	case err != nil:
		s.Log.Error("register failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	s.Log.Info("user registered", zap.String("user_id", id))
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !s.decodeCredentials(w, r, &req, &req.Email, &req.Password) {
		return
	}

	u, err := s.Store.Verify(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid credentials", nil)
		return
	case err != nil:
		s.Log.Error("verify failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	ttl := s.tokenTTL()
	tok, err := s.JWT.New(u.ID, u.Email, u.Role, ttl)
	if err != nil {
		s.Log.Error("token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, loginResp{
		AccessToken: tok,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
	})
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	tok, ok := kit.BearerToken(r)
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
		return
	}

	claims, err := s.JWT.Parse(tok)
	if err != nil {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id": claims.UserID,
		"email":   claims.Email,
		"role":    claims.Role,
	})
}

func (s *Server) tokenTTL() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	return defaultTokenTTL
}

// decodeCredentials decodes dst, normalizes the email and password it points
// at, then validates. It writes the 400 itself and reports false on rejection.
func (s *Server) decodeCredentials(w http.ResponseWriter, r *http.Request, dst any, email, password *string) bool {
	if err := kit.DecodeJSON(w, r, dst, true); err != nil {
		s.Log.Debug("rejected request body", zap.Error(err))

		var be *kit.BodyError
		if errors.As(err, &be) {
			kit.WriteError(w, r, http.StatusBadRequest, "invalid JSON", be.Details)
			return false
		}
		kit.WriteError(w, r, http.StatusBadRequest, "invalid JSON", nil)
		return false
	}

	*email = normalizeEmail(*email)
	*password = normalizePassword(*password)

	if err := validate.Struct(dst); err != nil {
		details, ok := kit.FieldErrors(err)
		if !ok {
			s.Log.Error("validate credentials", zap.Error(err))
			kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
			return false
		}
		kit.WriteError(w, r, http.StatusBadRequest, "validation failed", details)
		return false
	}
	return true
}
