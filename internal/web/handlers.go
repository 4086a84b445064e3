package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/vitos/coin_tracker/internal/domain"
	"go.uber.org/zap"
)

const (
	hintCookieName   = "coin_hint"
	hintCookieMaxAge = 60
)

func (s *Server) newPage(title string) page {
	return page{Title: title, Theme: s.opts.Theme}
}

// budgetContext bounds how long a page waits for its queries.
func (s *Server) budgetContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.RenderBudget)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.requestLogger(r).Error("Template error", zap.String("template", name), zap.Error(err))
	}
}

// errorStatus maps a failed query to the status every surface reports:
// 404 for a coin the upstream does not know, 502 for anything else.
func errorStatus(err error) int {
	if errors.Is(err, domain.ErrCoinNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, title string, err error) {
	status := errorStatus(err)
	message := "The coin data service could not be reached. Try again shortly."
	if status == http.StatusNotFound {
		message = "This coin does not exist."
	}
	s.requestLogger(r).Warn("Rendering error page", zap.Int("status", status), zap.Error(err))

	data := errorPage{page: s.newPage(title), Status: status, Message: message}
	s.render(w, r, status, "error.html", data)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.budgetContext(r.Context())
	defer cancel()

	st := s.service.Coins(ctx)
	if st.Failed() {
		s.renderError(w, r, "Coins", st.Err)
		return
	}

	data := listPage{page: s.newPage("Coins"), Loading: st.Pending()}
	if data.Loading {
		data.Refresh = s.opts.RefreshSeconds
	}
	for _, c := range st.Data {
		data.Coins = append(data.Coins, coinEntry{
			ID:      c.ID,
			Name:    c.Name,
			IconURL: s.icons.IconURL(c.Symbol),
			Path:    Route{CoinID: c.ID}.Path(),
		})
	}

	s.render(w, r, http.StatusOK, "list.html", data)
}

// handleNavigate stores the name posted from the list as a flash cookie
// scoped to the coin and redirects to its detail page.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	route := Route{CoinID: r.PathValue("coinId")}
	if name := r.FormValue("name"); name != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     hintCookieName,
			Value:    url.QueryEscape(name),
			Path:     route.Path(),
			MaxAge:   hintCookieMaxAge,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	http.Redirect(w, r, route.Path(), http.StatusSeeOther)
}

func readHint(r *http.Request) *domain.NavigationHint {
	c, err := r.Cookie(hintCookieName)
	if err != nil {
		return nil
	}
	name, err := url.QueryUnescape(c.Value)
	if err != nil || name == "" {
		return nil
	}
	return &domain.NavigationHint{Name: name}
}

func clearHint(w http.ResponseWriter, route Route) {
	http.SetCookie(w, &http.Cookie{
		Name:     hintCookieName,
		Path:     route.WithTab(domain.TabNone).Path(),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// handleDetail serves /{coinId} and its tabs. The nested section is
// picked from the route's tab.
func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	route, ok := ParseRoute(r.URL.EscapedPath())
	if !ok {
		http.NotFound(w, r)
		return
	}
	hint := readHint(r)

	ctx, cancel := s.budgetContext(r.Context())
	defer cancel()

	d := s.service.Detail(ctx, route.CoinID)
	if err := d.Err(); err != nil {
		if hint != nil {
			clearHint(w, route)
		}
		s.renderError(w, r, d.Title(hint), err)
		return
	}

	data := detailPage{
		page:    s.newPage(d.Title(hint)),
		Route:   route,
		Loading: d.Loading(),
		Tabs:    tabLinks(route),
	}
	if d.Ready() {
		data.Coin = d.Info.Data
		data.Ticker = d.Price.Data
	}

	switch route.Tab {
	case domain.TabPrice:
		data.Price = s.priceSection(ctx, route.CoinID)
	case domain.TabChart:
		data.Chart = s.chartSection(ctx, route.CoinID)
	}

	if data.Loading || (data.Chart != nil && data.Chart.Loading) || (data.Price != nil && data.Price.Loading) {
		data.Refresh = s.opts.RefreshSeconds
	}
	if !data.Loading && hint != nil {
		clearHint(w, route)
	}

	s.render(w, r, http.StatusOK, "detail.html", data)
}

func (s *Server) priceSection(ctx context.Context, coinID string) *priceSection {
	st := s.service.Price(ctx, coinID)
	sec := &priceSection{Loading: st.Pending()}
	switch {
	case st.Failed():
		sec.Err = st.Err.Error()
	case st.Loaded():
		sec.Snapshot = st.Data
		sec.Quote = st.Data.USD()
	}
	return sec
}

func (s *Server) chartSection(ctx context.Context, coinID string) *chartSection {
	st := s.service.Chart(ctx, coinID)
	sec := &chartSection{Loading: st.Pending(), Days: s.service.ChartDays()}
	switch {
	case st.Failed():
		sec.Err = st.Err.Error()
	case st.Loaded():
		sec.Candles = st.Data
		sec.Plot = plotCloses(st.Data, "Close (USD)")
	}
	return sec
}

type pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status        string `json:"status"`
	CachedQueries int    `json:"cached_queries"`
	Error         string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", CachedQueries: s.service.CachedQueries()}
	status := http.StatusOK

	if p, ok := s.fetchRepo.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.requestLogger(r).Error("Audit store unreachable", zap.Error(err))
			resp.Status = "degraded"
			resp.Error = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	s.writeJSON(w, r, status, resp)
}
