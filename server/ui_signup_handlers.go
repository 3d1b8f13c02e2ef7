package server

import (
	"net/http"

	"github.com/jrsteele09/ums-portal/apiclient"
	"github.com/jrsteele09/ums-portal/internal/requestid"
	"github.com/jrsteele09/ums-portal/users"
	"github.com/rs/zerolog/log"
)

const (
	registrationSucceededMessage = "User registered successfully!"
	registrationFailedMessage    = "Registration failed"
)

type RegisterPageData struct {
	UIPageData
	Form  registerForm
	Roles []users.RoleType
}

// RegisterPageHandler renders the registration form
func (s *Server) RegisterPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, pageRegister, s.registerPageData(r, registerForm{}))
	}
}

// RegisterSubmissionHandler creates the account. Registration never signs the
// user in; success and failure are both reported inline.
func (s *Server) RegisterSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		form := parseRegisterForm(r)
		if err := s.validate.Struct(form); err != nil {
			data := s.registerPageData(r, form)
			data.Error = validationMessage(err)
			s.render(w, http.StatusUnprocessableEntity, pageRegister, data)
			return
		}

		_, err := s.api.Register(r.Context(), apiclient.RegisterRequest{
			Email:     form.Email,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Password:  form.Password,
			Role:      form.Role,
		})
		if err != nil {
			log.Info().Err(err).Str("request_id", requestid.FromContext(r.Context())).Msg("Registration rejected")
			data := s.registerPageData(r, form)
			data.Error = apiclient.Message(err, registrationFailedMessage)
			s.render(w, http.StatusOK, pageRegister, data)
			return
		}

		data := s.registerPageData(r, registerForm{})
		data.Success = registrationSucceededMessage
		s.render(w, http.StatusOK, pageRegister, data)
	}
}

func (s *Server) registerPageData(r *http.Request, form registerForm) RegisterPageData {
	form.Password = ""
	return RegisterPageData{
		UIPageData: s.newPageData(r, "Register", RouteRegister),
		Form:       form,
		Roles:      users.Roles(),
	}
}
