package web

import (
	"net/url"
	"strings"

	"github.com/vitos/coin_tracker/internal/domain"
)

// Route is the coin location a detail request addresses.
type Route struct {
	CoinID string
	Tab    domain.Tab
}

// ParseRoute derives the route from a request path. It accepts
// /{coinId}, /{coinId}/price and /{coinId}/chart.
func ParseRoute(path string) (Route, bool) {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return Route{}, false
	}

	segments := strings.Split(path, "/")
	if len(segments) > 2 {
		return Route{}, false
	}

	coinID, err := url.PathUnescape(segments[0])
	if err != nil || coinID == "" {
		return Route{}, false
	}

	r := Route{CoinID: coinID}
	if len(segments) == 2 {
		tab, ok := domain.ParseTab(segments[1])
		if !ok {
			return Route{}, false
		}
		r.Tab = tab
	}
	return r, true
}

// Path renders the route back into a request path.
func (r Route) Path() string {
	p := "/" + url.PathEscape(r.CoinID)
	if r.Tab != domain.TabNone {
		p += "/" + r.Tab.String()
	}
	return p
}

// WithTab returns the same coin on another tab.
func (r Route) WithTab(tab domain.Tab) Route {
	r.Tab = tab
	return r
}
