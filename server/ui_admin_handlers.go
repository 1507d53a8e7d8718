package server

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/carhire-site/consent"
	"github.com/jrsteele09/carhire-site/consent/submissions"
	"github.com/jrsteele09/carhire-site/pages"
	"github.com/jrsteele09/carhire-site/theming"
	"github.com/jrsteele09/carhire-site/users"
	"github.com/rs/zerolog/log"
)

const (
	consentsPageSize  = 25
	dashboardRecent   = 50
	adminLayoutSource = "admin_layout.html"
)

type NavItem struct {
	Label  string
	Path   string
	Active bool
}

// AdminHeader is the data behind the shared admin header partial
type AdminHeader struct {
	Logo          theming.LogoData
	Title         string
	Nav           []NavItem
	UserName      string
	TimeRemaining time.Duration
	LogoutPath    string
}

type adminLayoutData struct {
	Header   AdminHeader
	Content  template.HTML
	AppName  string
	ThemeKey string
}

var adminNav = []struct {
	path string
	role users.RoleType
}{
	{RouteAdminDashboard, ""},
	{RouteAdminCookieConsents, users.RoleSiteAdmin},
	{RouteAdminTheming, users.RoleSiteAdmin},
}

// adminHeader builds the header for the signed-in admin from the request context
func (s *Server) adminHeader(r *http.Request) AdminHeader {
	info, raw := adminFromContext(r.Context())
	active := theming.FromContext(r.Context())

	header := AdminHeader{
		Logo:          theming.Logo(active.Theme, s.config.GetBrandName()),
		Title:         pages.Name(r.URL.Path),
		TimeRemaining: s.checker.TimeRemaining(raw),
		LogoutPath:    RouteAdminLogout,
	}
	if info != nil {
		header.UserName = info.Name
		if header.UserName == "" {
			header.UserName = info.Email
		}
	}
	for _, item := range adminNav {
		if item.role != "" && (info == nil || !info.HasRole(string(item.role))) {
			continue
		}
		header.Nav = append(header.Nav, NavItem{
			Label:  pages.Name(item.path),
			Path:   item.path,
			Active: strings.HasPrefix(r.URL.Path, item.path),
		})
	}
	return header
}

// renderAdminPage renders contentTmpl inside the admin layout
func (s *Server) renderAdminPage(w http.ResponseWriter, r *http.Request, contentTmpl *template.Template, data any) {
	var content bytes.Buffer
	if err := contentTmpl.Execute(&content, data); err != nil {
		log.Err(err).Str("template", contentTmpl.Name()).Msg("Failed to render admin content")
		http.Error(w, "Failed to render content", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	renderHTML(w, s.adminLayout, adminLayoutData{
		Header:   s.adminHeader(r),
		Content:  template.HTML(content.String()),
		AppName:  s.config.GetAppName(),
		ThemeKey: theming.FromContext(r.Context()).ThemeKey,
	})
}

// DashboardData summarises consent activity and the running theme
type DashboardData struct {
	Theme     theming.Active
	OpenViews int
	Accepted  int
	Rejected  int
	Recent    []*submissions.Submission
}

// AdminDashboardHandler renders the admin dashboard
func (s *Server) AdminDashboardHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("admin_dashboard_content.html")

	return func(w http.ResponseWriter, r *http.Request) {
		recent, err := s.repos.Submissions.List(r.Context(), 0, dashboardRecent)
		if err != nil {
			log.Err(err).Msg("Failed to list consent submissions")
		}

		data := DashboardData{
			Theme:     theming.FromContext(r.Context()),
			OpenViews: s.views.Len(),
			Recent:    recent,
		}
		for _, sub := range recent {
			if sub.Choice() == consent.Accepted {
				data.Accepted++
			} else {
				data.Rejected++
			}
		}
		s.renderAdminPage(w, r, tmpl, data)
	}
}

// CookieConsentsData is one page of the consent audit
type CookieConsentsData struct {
	Submissions []*submissions.Submission
	HasPrev     bool
	Prev        int
	HasMore     bool
	Next        int
}

// AdminCookieConsentsHandler pages through consent submissions, newest first
func (s *Server) AdminCookieConsentsHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("admin_cookie_consents_content.html")

	return func(w http.ResponseWriter, r *http.Request) {
		offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		if err != nil || offset < 0 {
			offset = 0
		}

		// One extra row tells us whether there is a next page
		list, err := s.repos.Submissions.List(r.Context(), offset, consentsPageSize+1)
		if err != nil {
			log.Err(err).Msg("Failed to list consent submissions")
			http.Error(w, "Failed to load consent submissions", http.StatusInternalServerError)
			return
		}

		data := CookieConsentsData{
			HasPrev: offset > 0,
			Prev:    max(offset-consentsPageSize, 0),
			Next:    offset + consentsPageSize,
		}
		if len(list) > consentsPageSize {
			data.HasMore = true
			list = list[:consentsPageSize]
		}
		data.Submissions = list
		s.renderAdminPage(w, r, tmpl, data)
	}
}
