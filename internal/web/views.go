package web

import (
	"embed"
	"fmt"
	"html/template"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/vitos/coin_tracker/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	chartHeight = 12
	chartWidth  = 60
)

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}

var templateFuncs = template.FuncMap{
	"usd":     formatUSD,
	"amount":  formatAmount,
	"percent": formatPercent,
	"ago":     formatAgo,
	"date":    formatDate,
	"yesNo":   formatYesNo,
}

func formatUSD(v float64) string {
	if v != 0 && math.Abs(v) < 1 {
		return "$" + humanize.FormatFloat("#,###.######", v)
	}
	return "$" + humanize.CommafWithDigits(v, 2)
}

func formatAmount(v float64) string {
	if v == 0 {
		return "-"
	}
	return humanize.Commaf(math.Round(v))
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

func formatAgo(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return humanize.Time(*t)
}

func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func formatYesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// page holds what the layout needs.
type page struct {
	Title   string
	Theme   domain.ThemePalette
	Refresh int
}

type coinEntry struct {
	ID      string
	Name    string
	IconURL string
	Path    string
}

type listPage struct {
	page
	Loading bool
	Coins   []coinEntry
}

type tabLink struct {
	Label  string
	Path   string
	Active bool
}

type priceSection struct {
	Loading  bool
	Err      string
	Snapshot *domain.PriceSnapshot
	Quote    domain.Quote
}

type chartSection struct {
	Loading bool
	Err     string
	Days    int
	Plot    string
	Candles []domain.Candle
}

type detailPage struct {
	page
	Route   Route
	Loading bool
	Coin    *domain.CoinDetail
	Ticker  *domain.PriceSnapshot
	Tabs    []tabLink
	Price   *priceSection
	Chart   *chartSection
}

type errorPage struct {
	page
	Status  int
	Message string
}

// tabLinks lists the tabs in display order and marks the one route selects.
func tabLinks(r Route) []tabLink {
	return []tabLink{
		{Label: "Chart", Path: r.WithTab(domain.TabChart).Path(), Active: r.Tab == domain.TabChart},
		{Label: "Price", Path: r.WithTab(domain.TabPrice).Path(), Active: r.Tab == domain.TabPrice},
	}
}

// plotCloses draws the close prices of candles as an ASCII chart.
func plotCloses(candles []domain.Candle, caption string) string {
	if len(candles) < 2 {
		return ""
	}
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	width := chartWidth
	if len(closes) > width {
		width = len(closes)
	}
	return asciigraph.Plot(closes,
		asciigraph.Height(chartHeight),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
