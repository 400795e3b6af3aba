package web

import (
	"errors"
	"net/http"

	"github.com/Joseda-hg/lazytodo/internal/auth"
	"github.com/Joseda-hg/lazytodo/internal/form"
)

type loginPage struct {
	pageData
	Form *form.LoginForm
}

type registerPage struct {
	pageData
	Form *form.RegisterForm
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		f := &form.LoginForm{Next: form.SafeNext(r.URL.Query().Get("next")), Errors: form.Errors{}}
		s.render(w, r, http.StatusOK, "login", loginPage{pageData: s.page(w, r, "Log in"), Form: f})
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	f := form.BindLoginForm(r.PostForm)
	if !f.Validate() {
		s.render(w, r, http.StatusOK, "login", loginPage{pageData: s.page(w, r, "Log in"), Form: f})
		return
	}

	_, token, err := s.auth.Login(r.Context(), f.Username, f.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			f.Password = ""
			f.Errors.Add("", "Please enter a correct username and password.")
			s.render(w, r, http.StatusOK, "login", loginPage{pageData: s.page(w, r, "Log in"), Form: f})
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.setSessionCookie(w, token)
	http.Redirect(w, r, f.Next, http.StatusSeeOther)
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.render(w, r, http.StatusOK, "register", registerPage{pageData: s.page(w, r, "Sign up"), Form: &form.RegisterForm{Errors: form.Errors{}}})
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	f := form.BindRegisterForm(r.PostForm)
	if !f.Validate() {
		s.render(w, r, http.StatusOK, "register", registerPage{pageData: s.page(w, r, "Sign up"), Form: f})
		return
	}

	user, err := s.auth.Register(r.Context(), f.Username, f.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			f.Errors.Add("username", "A user with that username already exists.")
			s.render(w, r, http.StatusOK, "register", registerPage{pageData: s.page(w, r, "Sign up"), Form: f})
			return
		}
		s.serverError(w, r, err)
		return
	}

	token, err := s.auth.IssueToken(user)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.setSessionCookie(w, token)
	s.addFlash(w, r, "Welcome, "+user.Username+"!")
	http.Redirect(w, r, form.DefaultNext, http.StatusSeeOther)
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
