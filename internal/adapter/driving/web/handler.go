// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"golang.org/x/time/rate"

	"github.com/ericfisherdev/profilepanel/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/profilepanel/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/profilepanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/profilepanel/internal/application"
	"github.com/ericfisherdev/profilepanel/internal/domain/model"
)

const appTitle = "Profile Panel"

// Handler is the web GUI driving adapter. Each handler is the view controller
// for one page: it reads the form, calls the SessionService and decides
// between re-rendering with a notice and redirecting.
type Handler struct {
	sessions     *application.SessionService
	loginLimiter *rate.Limiter
	logger       *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. loginLimiter
// throttles login and signup submissions; nil disables throttling.
func NewHandler(sessions *application.SessionService, loginLimiter *rate.Limiter, logger *slog.Logger) *Handler {
	return &Handler{
		sessions:     sessions,
		loginLimiter: loginLimiter,
		logger:       logger,
	}
}

// LoginPage renders the login form, with a notice when a redirect explains
// why the user landed here.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "Login", loginNotice(r), pages.Login(vm.LoginViewModel{}))
}

// Login handles the login form. Success stores the credential and moves on
// to the profile view; failure re-renders the form with the email kept.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	form := vm.LoginViewModel{Email: email}

	if !h.allowLogin() {
		h.render(w, r, http.StatusTooManyRequests, "Login", notice(vm.NoticeError, msgTooManyAttempts), pages.Login(form))
		return
	}

	if err := h.sessions.Login(r.Context(), email, r.PostFormValue("password")); err != nil {
		h.logFailure("login failed", err)
		status, n := noticeForError(err)
		h.render(w, r, status, "Login", n, pages.Login(form))
		return
	}

	http.Redirect(w, r, "/view", http.StatusSeeOther)
}

// SignupPage renders the account creation form.
func (h *Handler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "Sign up", vm.Notice{}, pages.Signup(vm.SignupViewModel{}))
}

// Signup handles the account creation form. The new account is signed in
// straight away.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	account := model.NewAccount{
		FirstName:    r.PostFormValue("firstName"),
		LastName:     r.PostFormValue("lastName"),
		Email:        r.PostFormValue("email"),
		Password:     r.PostFormValue("password"),
		PasswordConf: r.PostFormValue("passwordConf"),
	}
	form := vm.SignupViewModel{FirstName: account.FirstName, LastName: account.LastName, Email: account.Email}

	if !h.allowLogin() {
		h.render(w, r, http.StatusTooManyRequests, "Sign up", notice(vm.NoticeError, msgTooManyAttempts), pages.Signup(form))
		return
	}

	if err := h.sessions.Signup(r.Context(), account); err != nil {
		h.logFailure("signup failed", err)
		status, n := noticeForError(err)
		h.render(w, r, status, "Sign up", n, pages.Signup(form))
		return
	}

	http.Redirect(w, r, "/view", http.StatusSeeOther)
}

// ViewProfile is a protected view: anonymous visitors are redirected before
// any fetch, and the profile is fetched fresh on every visit.
func (h *Handler) ViewProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.sessions.Profile(r.Context())
	if err != nil {
		if h.redirectIfSessionLost(w, r, err) {
			return
		}
		h.logFailure("profile fetch failed", err)
		status, n := noticeForError(err)
		h.render(w, r, status, "Profile", n, pages.Profile(vm.ProfileViewModel{}))
		return
	}

	h.render(w, r, http.StatusOK, "Profile", vm.Notice{}, pages.Profile(toProfileViewModel(*profile)))
}

// UpdatePage is a protected view rendering the empty update form.
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sessions.Guard(r.Context()); err != nil {
		h.redirectIfSessionLost(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "Update Profile", vm.Notice{}, pages.Update(vm.UpdateViewModel{}))
}

// UpdateProfile handles the update form. Success clears the inputs; any
// failure keeps them so the user can retry.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	form := vm.UpdateViewModel{
		FirstName: r.PostFormValue("firstName"),
		LastName:  r.PostFormValue("lastName"),
	}

	if err := h.sessions.UpdateProfile(r.Context(), form.FirstName, form.LastName); err != nil {
		if h.redirectIfSessionLost(w, r, err) {
			return
		}
		h.logFailure("profile update failed", err)
		status, n := noticeForError(err)
		h.render(w, r, status, "Update Profile", n, pages.Update(form))
		return
	}

	h.render(w, r, http.StatusOK, "Update Profile", notice(vm.NoticeSuccess, msgUpdated), pages.Update(vm.UpdateViewModel{}))
}

// SignOut ends the session and always lands on the login page. The local
// credential is gone either way; a remote failure is reported there.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(r.Context()); err != nil {
		h.logger.Warn("sign-out incomplete", "error", err)
		http.Redirect(w, r, "/?signout=failed", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/?signout=ok", http.StatusSeeOther)
}

// redirectIfSessionLost sends the user to the login page when err means the
// session is missing or was rejected. It reports whether it redirected.
func (h *Handler) redirectIfSessionLost(w http.ResponseWriter, r *http.Request, err error) bool {
	if !isSessionLost(err) {
		return false
	}

	target := "/"
	if !errors.Is(err, application.ErrNotAuthenticated) {
		target = "/?session=expired"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
	return true
}

func (h *Handler) allowLogin() bool {
	return h.loginLimiter == nil || h.loginLimiter.Allow()
}

func (h *Handler) logFailure(msg string, err error) {
	h.logger.Info(msg, "error", err)
}

// render writes the page wrapped in the layout. The page is rendered into a
// buffer first so a rendering failure can still become a clean 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title string, n vm.Notice, body templ.Component) {
	var buf bytes.Buffer
	layout := templates.Layout(title+" · "+appTitle, n, body)

	if err := layout.Render(r.Context(), &buf); err != nil {
		h.logger.Error("failed to render page", "title", title, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
