package server

import (
	"net/http"

	"github.com/jrsteele09/ums-portal/apiclient"
	"github.com/jrsteele09/ums-portal/gate"
	"github.com/jrsteele09/ums-portal/internal/requestid"
	"github.com/jrsteele09/ums-portal/sessions"
	"github.com/rs/zerolog/log"
)

const loginFailedMessage = "Login failed"

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	UIPageData
	Email string // Preserve email on error
	Next  string
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			UIPageData: s.newPageData(r, "Login", RouteLogin),
			Next:       safeNext(r.URL.Query().Get("next")),
		}
		s.render(w, http.StatusOK, pageLogin, data)
	}
}

// LoginSubmissionHandler exchanges the credentials with the UMS API. On success
// the session is started and the browser is sent on; on failure the form is
// shown again with one inline message.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		form := parseLoginForm(r)
		data := LoginPageData{
			UIPageData: s.newPageData(r, "Login", RouteLogin),
			Email:      form.Email,
			Next:       safeNext(form.Next),
		}

		if err := s.validate.Struct(form); err != nil {
			data.Error = validationMessage(err)
			s.render(w, http.StatusUnprocessableEntity, pageLogin, data)
			return
		}

		resp, err := s.api.Login(r.Context(), apiclient.LoginRequest{Email: form.Email, Password: form.Password})
		if err != nil {
			log.Info().Err(err).Str("request_id", requestid.FromContext(r.Context())).Msg("Login rejected")
			data.Error = apiclient.Message(err, loginFailedMessage)
			s.render(w, http.StatusOK, pageLogin, data)
			return
		}

		cred := sessions.Credential{AccessToken: resp.Access, RefreshToken: resp.Refresh}
		if _, err := s.sessions.Begin(w, r, cred, resp.User, apiclient.AccessExpiry(resp.Access)); err != nil {
			log.Err(err).Str("request_id", requestid.FromContext(r.Context())).Msg("Failed to start session")
			data.Error = loginFailedMessage
			s.render(w, http.StatusOK, pageLogin, data)
			return
		}

		target := data.Next
		if target == "" {
			target = RouteDashboard
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// LogoutHandler ends the session and returns to the login page
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.sessions.End(w, r); err != nil {
			log.Err(err).Msg("Failed to delete session")
		}
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

// safeNext keeps next only when it is a local path outside the auth pages.
func safeNext(next string) string {
	if !gate.IsLocalPath(next) {
		return ""
	}
	for _, p := range []string{RouteLogin, RouteLogout, RouteRegister} {
		if gate.UnderPath(next, p) {
			return ""
		}
	}
	return next
}
