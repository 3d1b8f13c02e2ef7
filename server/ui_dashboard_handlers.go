package server

import (
	"net/http"
	"time"

	"github.com/jrsteele09/ums-portal/apiclient"
	"github.com/jrsteele09/ums-portal/internal/requestid"
	"github.com/jrsteele09/ums-portal/sessions"
	"github.com/jrsteele09/ums-portal/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	activityFeedSize       = 5
	statsUnavailable       = "Statistics are unavailable right now"
	activityUnavailable    = "Recent activity is unavailable right now"
	profileFromLoginNotice = "Showing the details captured at login"
)

type DashboardPageData struct {
	UIPageData
	Cards         []StatCard
	StatsError    string
	Activity      []apiclient.Notification
	ActivityError string
	AccessExpiry  time.Time
}

type ProfilePageData struct {
	UIPageData
	Profile users.User
	Notice  string
}

// DashboardHandler renders the role-aware dashboard. It is only reached
// through the gate, so a token is present but may be stale; API failures
// degrade individual panels instead of failing the page.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessions.FromContext(r.Context())
		user := sess.User()
		ts := s.tokenSource(r, sess)
		logger := log.With().Str("request_id", requestid.FromContext(r.Context())).Logger()

		data := DashboardPageData{UIPageData: s.newPageData(r, "Dashboard", RouteDashboard)}

		if scope := user.Role.DashboardScope(); scope != "" {
			stats, err := s.api.Dashboard(r.Context(), ts, scope)
			if err != nil {
				logger.Warn().Err(err).Str("scope", scope).Msg("Failed to load dashboard statistics")
				data.StatsError = apiclient.Message(err, statsUnavailable)
			} else {
				data.Cards = s.menus.Cards(user.Role, stats)
			}
		}

		notifications, err := s.api.Notifications(r.Context(), ts)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to load notifications")
			data.ActivityError = activityUnavailable
		} else {
			data.Activity = latest(notifications, activityFeedSize)
		}

		data.AccessExpiry = sess.AccessExpiry()
		s.render(w, http.StatusOK, pageDashboard, data)
	}
}

// ProfileHandler shows the profile from the API, or the login snapshot when
// the API cannot be reached.
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessions.FromContext(r.Context())
		data := ProfilePageData{UIPageData: s.newPageData(r, "Profile", RouteProfile)}

		profile, err := s.api.Profile(r.Context(), s.tokenSource(r, sess))
		if err != nil {
			log.Warn().Err(err).Str("request_id", requestid.FromContext(r.Context())).Msg("Failed to load profile")
			data.Profile = sess.User()
			data.Notice = profileFromLoginNotice
		} else {
			data.Profile = *profile
		}

		s.render(w, http.StatusOK, pageProfile, data)
	}
}

// tokenSource serves the session's access token and, once it has expired,
// refreshes it and stores the new pair back in the session.
func (s *Server) tokenSource(r *http.Request, sess *sessions.Session) oauth2.TokenSource {
	tok := &oauth2.Token{
		AccessToken:  sess.AccessToken(),
		TokenType:    "Bearer",
		RefreshToken: sess.RefreshToken(),
		Expiry:       sess.AccessExpiry(),
	}
	ctx := r.Context()
	return s.api.TokenSource(ctx, tok, func(t *oauth2.Token) error {
		return s.sessions.UpdateCredential(ctx, sess, sessions.Credential{
			AccessToken:  t.AccessToken,
			RefreshToken: t.RefreshToken,
		}, t.Expiry)
	})
}

func latest(list []apiclient.Notification, n int) []apiclient.Notification {
	if len(list) > n {
		return list[:n]
	}
	return list
}
