package server

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/access"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/auth"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/identity"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/web"
)

type signupRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	InstituteName string `json:"institute_name"`
	Role          string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func clientMeta(r *http.Request) identity.ClientMeta {
	return identity.ClientMeta{UserAgent: r.UserAgent(), IPAddress: r.RemoteAddr}
}

func (s *Server) startSession(w http.ResponseWriter, sess *identity.Session) {
	auth.SetSessionCookie(w, sess.Token, sess.ExpiresAt, s.opts.Cookies)
}

// endSession revokes the caller's session, if any, and clears the session
// cookie. The role flag is left untouched.
func (s *Server) endSession(w http.ResponseWriter, r *http.Request) error {
	if principal, ok := auth.GetUserFromContext(r.Context()); ok {
		if err := s.opts.Identity.SignOut(r.Context(), principal.SessionID); err != nil {
			return err
		}
		s.logger.Info("signed out", zap.String("user_id", principal.UserID))
	}
	auth.ClearSessionCookie(w, s.opts.Cookies)
	return nil
}

// handleAPISignup registers an account and opens a session.
func (s *Server) handleAPISignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.opts.Identity.SignUp(r.Context(),
		identity.Credentials{Email: req.Email, Password: req.Password},
		identity.Attributes{Username: req.Username, FullName: req.FullName, InstituteName: req.InstituteName, Role: req.Role},
		clientMeta(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.startSession(w, sess)
	writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

// handleAPILogin exchanges credentials for a session.
func (s *Server) handleAPILogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.opts.Identity.SignIn(r.Context(), identity.Credentials{Email: req.Email, Password: req.Password}, clientMeta(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.startSession(w, sess)
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// handleAPILogout is idempotent: anonymous callers get 204 as well.
func (s *Server) handleAPILogout(w http.ResponseWriter, r *http.Request) {
	if err := s.endSession(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAPISession describes the caller's session and effective role.
func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.GetUserFromContext(r.Context())
	view := auth.GetViewFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"session": sessionResponse{
			UserID:    principal.UserID,
			Email:     principal.Email,
			SessionID: principal.SessionID,
		},
		"role":  view.Role().String(),
		"phase": view.Phase().String(),
	})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "Login", web.LoginPage(web.LoginForm{}))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, "Login", web.LoginPage(web.LoginForm{Error: err.Error()}))
		return
	}
	form := web.LoginForm{Email: strings.TrimSpace(r.PostFormValue("email"))}
	sess, err := s.opts.Identity.SignIn(r.Context(),
		identity.Credentials{Email: form.Email, Password: r.PostFormValue("password")},
		clientMeta(r))
	if err != nil {
		status, msg := userMessage(s.logger, r, err)
		form.Error = msg
		s.renderPage(w, r, status, "Login", web.LoginPage(form))
		return
	}
	s.startSession(w, sess)
	http.Redirect(w, r, access.PathLanding, http.StatusSeeOther)
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "Sign up", web.SignupPage(web.SignupForm{}))
}

// handleSignup creates the account and lands the new user on the entry page
// for the role they picked, or on the role selector when they picked none.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, "Sign up", web.SignupPage(web.SignupForm{Error: err.Error()}))
		return
	}
	form := web.SignupForm{
		Email:         strings.TrimSpace(r.PostFormValue("email")),
		Username:      r.PostFormValue("username"),
		FullName:      r.PostFormValue("full_name"),
		InstituteName: r.PostFormValue("institute_name"),
		Role:          r.PostFormValue("role"),
	}
	sess, err := s.opts.Identity.SignUp(r.Context(),
		identity.Credentials{Email: form.Email, Password: r.PostFormValue("password")},
		identity.Attributes{Username: form.Username, FullName: form.FullName, InstituteName: form.InstituteName, Role: form.Role},
		clientMeta(r))
	if err != nil {
		status, msg := userMessage(s.logger, r, err)
		form.Error = msg
		s.renderPage(w, r, status, "Sign up", web.SignupPage(form))
		return
	}
	s.startSession(w, sess)

	next := access.PathSelectRole
	if role, ok := access.ParseSelection(form.Role); ok {
		next = access.LandingFor(role)
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.endSession(w, r); err != nil {
		s.logger.Warn("sign out failed", zap.Error(err))
	}
	http.Redirect(w, r, access.PathLanding, http.StatusSeeOther)
}

func (s *Server) handleSelectRolePage(w http.ResponseWriter, r *http.Request) {
	view := auth.GetViewFromContext(r.Context())
	s.renderPage(w, r, http.StatusOK, "Choose your role", web.SelectRolePage(view.Flag(), ""))
}

// handleSelectRole overwrites the local role flag and sends the visitor to
// the entry page for that role. It never touches the database.
func (s *Server) handleSelectRole(w http.ResponseWriter, r *http.Request) {
	view := auth.GetViewFromContext(r.Context())
	if err := parseForm(w, r); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, "Choose your role", web.SelectRolePage(view.Flag(), err.Error()))
		return
	}
	role, ok := access.ParseSelection(r.PostFormValue("role"))
	if !ok {
		s.renderPage(w, r, http.StatusBadRequest, "Choose your role",
			web.SelectRolePage(view.Flag(), "Pick Host or Participant."))
		return
	}
	auth.SetRoleCookie(w, role, s.opts.Cookies)
	http.Redirect(w, r, access.LandingFor(role), http.StatusSeeOther)
}
