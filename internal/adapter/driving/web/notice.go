package web

import (
	"errors"
	"net/http"

	vm "github.com/ericfisherdev/profilepanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/profilepanel/internal/application"
	"github.com/ericfisherdev/profilepanel/internal/domain/model"
	"github.com/ericfisherdev/profilepanel/internal/domain/port/driven"
)

// Notice texts (markdown).
const (
	msgLoginFailed      = "**Login failed.** Check your email and password and try again."
	msgRequestFailed    = "**Something went wrong** talking to the account service. Please try again."
	msgUpdateInProgress = "An update is already in progress. Wait for it to finish."
	msgUpdated          = "**Profile updated.**"
	msgSessionExpired   = "Your session has ended. Please sign in again."
	msgSignedOut        = "You have been signed out."
	msgSignOutFailed    = "**Sign-out could not be confirmed** by the account service. Your session was cleared on this device."
	msgTooManyAttempts  = "Too many attempts. Wait a moment and try again."
)

func notice(kind vm.NoticeKind, markdown string) vm.Notice {
	return vm.Notice{Kind: kind, HTML: RenderMarkdown(markdown)}
}

// noticeForError maps a failed form submission to a status code and the
// notice shown above the re-rendered form.
func noticeForError(err error) (int, vm.Notice) {
	var validationErr *model.ValidationError
	var serviceErr *driven.ServiceError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, notice(vm.NoticeError, validationErr.Message)

	case errors.Is(err, driven.ErrAuthenticationFailed):
		if errors.As(err, &serviceErr) && serviceErr.Op == "create account" && serviceErr.Message != "" {
			return http.StatusBadRequest, notice(vm.NoticeError, "**Sign up failed:** "+serviceErr.Message)
		}
		return http.StatusUnauthorized, notice(vm.NoticeError, msgLoginFailed)

	case errors.Is(err, application.ErrUpdateInProgress):
		return http.StatusConflict, notice(vm.NoticeError, msgUpdateInProgress)

	default:
		return http.StatusBadGateway, notice(vm.NoticeError, msgRequestFailed)
	}
}

// isSessionLost reports whether err means the user has no usable session and
// must be sent to the login page.
func isSessionLost(err error) bool {
	return errors.Is(err, application.ErrNotAuthenticated) || errors.Is(err, driven.ErrUnauthorized)
}

// loginNotice returns the notice for the login page from the redirect that led there.
func loginNotice(r *http.Request) vm.Notice {
	q := r.URL.Query()
	switch {
	case q.Get("signout") == "failed":
		return notice(vm.NoticeError, msgSignOutFailed)
	case q.Get("signout") == "ok":
		return notice(vm.NoticeInfo, msgSignedOut)
	case q.Get("session") == "expired":
		return notice(vm.NoticeInfo, msgSessionExpired)
	default:
		return vm.Notice{}
	}
}
