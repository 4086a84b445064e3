package domain

// Tab is the nested view selected under a coin: derived once from the route
// and used both to highlight the tab and to pick the nested content.
type Tab int

const (
	TabNone Tab = iota
	TabPrice
	TabChart
)

func (t Tab) String() string {
	switch t {
	case TabPrice:
		return "price"
	case TabChart:
		return "chart"
	default:
		return ""
	}
}

// ParseTab maps a path segment to a tab; ok is false for unknown segments.
func ParseTab(segment string) (Tab, bool) {
	switch segment {
	case "price":
		return TabPrice, true
	case "chart":
		return TabChart, true
	default:
		return TabNone, false
	}
}

// NavigationHint is the display name handed from the list to the detail view.
type NavigationHint struct {
	Name string `json:"name"`
}
