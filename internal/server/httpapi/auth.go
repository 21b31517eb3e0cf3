package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/hfiles/backend/internal/server/models"
)

const sessionCookieName = "hfiles_session"

// setSessionCookie issues the session token as an HttpOnly cookie. With
// SecureCookies enabled the cookie is SameSite=None + Secure for cross-site
// frontends; otherwise SameSite=Lax for local development over plain HTTP.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if s.config.SecureCookies {
		cookie.SameSite = http.SameSiteNoneMode
		cookie.Secure = true
	}
	http.SetCookie(w, cookie)
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	}
	if s.config.SecureCookies {
		cookie.SameSite = http.SameSiteNoneMode
		cookie.Secure = true
	}
	http.SetCookie(w, cookie)
}

type userResponse struct {
	ID              int64   `json:"id"`
	FullName        string  `json:"fullName"`
	Email           string  `json:"email"`
	Phone           *string `json:"phone"`
	Gender          string  `json:"gender"`
	ProfileImageURL string  `json:"profileImageUrl"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:              u.ID,
		FullName:        u.FullName,
		Email:           u.Email,
		Phone:           u.Phone,
		Gender:          u.Gender,
		ProfileImageURL: u.ProfileImageURL,
	}
}

type registerRequest struct {
	FullName        string  `json:"fullName"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	Phone           *string `json:"phone"`
	Gender          string  `json:"gender"`
	ProfileImageURL string  `json:"profileImageUrl"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}

	user, err := s.users.Register(r.Context(), req.FullName, req.Email, req.Password, req.Phone, req.Gender, req.ProfileImageURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "user registered successfully",
		"user":    toUserResponse(user),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}

	user, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := s.sessions.Create(user.ID)
	if err != nil {
		s.logger.Error(r.Context(), "session create failed", "error", err.Error())
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// handleLogout destroys the session if one is presented. Logging out without
// a valid cookie is not an error.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.Destroy(cookie.Value)
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
