package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/carhire-site/server/pageviews"
	"github.com/jrsteele09/carhire-site/theming"
)

// ConsentBannerData renders the banner. It always starts hidden; the page's consent
// stream reveals it once the delayed check finds no decision.
type ConsentBannerData struct {
	ViewID    string
	StreamURL string
	Visible   bool
}

type IndexPageData struct {
	AppName   string
	BrandName string
	Year      int
	Theme     theming.Active
	Logo      theming.LogoData
	Popup     theming.ThemePopup
	Consent   ConsentBannerData
}

func newConsentBanner(viewID string) ConsentBannerData {
	return ConsentBannerData{
		ViewID:    viewID,
		StreamURL: RouteConsentStream + "?view=" + url.QueryEscape(viewID),
	}
}

// IndexHandler renders the home page
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		active := theming.FromContext(r.Context())
		data := IndexPageData{
			AppName:   s.config.GetAppName(),
			BrandName: s.config.GetBrandName(),
			Year:      time.Now().Year(),
			Theme:     active,
			Logo:      theming.Logo(active.Theme, s.config.GetBrandName()),
			Popup:     theming.NewThemePopup(active.Theme),
			Consent:   newConsentBanner(pageviews.NewViewID()),
		}
		w.Header().Set("Cache-Control", "no-store")
		renderHTML(w, tmpl, data)
	}
}
