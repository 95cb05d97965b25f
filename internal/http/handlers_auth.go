package http

import (
	"errors"
	"net/http"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
)

type registerForm struct {
	Name    string
	Email   string
	Gender  string
	Genders []core.Gender
}

type credentialsForm struct {
	Email string
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register", s.newPage(r, "Register", ViewNone,
		registerForm{Genders: core.Genders(), Gender: string(core.Male)}))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	in := services.RegisterInput{
		Name:     sanitizeInput(r.PostForm.Get("name")),
		Email:    sanitizeInput(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
		Gender:   r.PostForm.Get("gender"),
		Secret:   r.PostForm.Get("secret"),
	}
	if _, err := s.accounts.Register(r.Context(), in); err != nil {
		msg, status := userMessage(err)
		if status == http.StatusInternalServerError {
			s.log.LogError(r.Context(), "Registration failed", err, applog.OpRegister, nil)
		}
		p := s.newPage(r, "Register", ViewNone, registerForm{
			Name: in.Name, Email: in.Email, Gender: in.Gender, Genders: core.Genders(),
		})
		p.Error = msg
		s.render(w, r, status, "register", p)
		return
	}

	redirect(w, r, withFlash("/login", flashRegistered))
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", s.newPage(r, "Login", ViewNone, credentialsForm{}))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	email := sanitizeInput(r.PostForm.Get("email"))
	u, err := s.accounts.Authenticate(r.Context(), email, r.PostForm.Get("password"))
	if err != nil {
		msg, status := userMessage(err)
		if status == http.StatusInternalServerError {
			s.log.LogError(r.Context(), "Login failed", err, applog.OpLogin, nil)
		}
		p := s.newPage(r, "Login", ViewNone, credentialsForm{Email: email})
		p.Error = msg
		s.render(w, r, status, "login", p)
		return
	}

	// A new login replaces whatever session the browser carried.
	s.sessions.Logout(w, r)
	s.sessions.Login(w, u)
	s.log.LogAuth(r.Context(), applog.OpLogin, u.ID, nil)
	redirect(w, r, withFlash(ViewAddExpense.Path(), flashWelcome))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(w, r)
	redirect(w, r, withFlash("/login", flashLoggedOut))
}

func (s *Server) handleForgotForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "forgot", s.newPage(r, "Reset Password", ViewNone, credentialsForm{}))
}

func (s *Server) handleForgot(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	email := sanitizeInput(r.PostForm.Get("email"))
	err := s.accounts.ResetPassword(r.Context(), email, r.PostForm.Get("secret"), r.PostForm.Get("new_password"))
	if err != nil {
		msg, status := userMessage(err)
		if status == http.StatusInternalServerError {
			s.log.LogError(r.Context(), "Password reset failed", err, applog.OpReset, nil)
		}
		p := s.newPage(r, "Reset Password", ViewNone, credentialsForm{Email: email})
		p.Error = msg
		s.render(w, r, status, "forgot", p)
		return
	}

	redirect(w, r, withFlash("/login", flashPasswordReset))
}

func (s *Server) handleDeleteAccountForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "delete_account", s.newPage(r, "Delete Account", ViewNone, nil))
}

// handleDeleteAccount removes the logged-in account when the secret word
// matches, then ends every session the user holds.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	sess := currentUser(r)
	userID, err := s.accounts.DeleteAccount(r.Context(), sess.Email, r.PostForm.Get("secret"))
	if err != nil {
		msg, status := userMessage(err)
		if !errors.Is(err, core.ErrDeleteFailed) {
			s.log.LogError(r.Context(), "Account deletion failed", err, applog.OpDelete,
				applog.NewFields().WithUser(sess.UserID))
		}
		p := s.newPage(r, "Delete Account", ViewNone, nil)
		p.Error = msg
		s.render(w, r, status, "delete_account", p)
		return
	}

	s.sessions.Logout(w, r)
	s.sessions.DestroyUser(userID)
	redirect(w, r, withFlash("/login", flashAccountDeleted))
}

// sessionUser is a convenience for handlers logging on behalf of a user.
func sessionUser(sess session.Session) applog.LogFields {
	return applog.NewFields().WithUser(sess.UserID)
}
