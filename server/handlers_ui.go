package server

import (
	"net/http"

	"github.com/jrsteele09/ums-portal/sessions"
	"github.com/jrsteele09/ums-portal/users"
)

// UIPageData is the template model shared by every page
type UIPageData struct {
	AppName       string
	Title         string
	Active        string
	Authenticated bool
	User          users.User
	Heading       string
	Menu          []MenuItem
	Error         string
	Success       string
}

func (s *Server) newPageData(r *http.Request, title, active string) UIPageData {
	sess := sessions.FromContext(r.Context())
	user := sess.User()
	data := UIPageData{
		AppName:       s.config.GetAppName(),
		Title:         title,
		Active:        active,
		Authenticated: sess.Authenticated(),
		User:          user,
	}
	if data.Authenticated {
		rm := s.menus.For(user.Role)
		data.Heading = rm.Heading
		data.Menu = rm.Menu
	}
	return data
}
