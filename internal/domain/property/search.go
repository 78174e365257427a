package property

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// SearchParams filter the public catalog. VisibleOnly is forced for guest
// facing queries; host dashboards pass their own HostID instead.
type SearchParams struct {
	Location      string
	MinGuests     int
	PriceMinCents int64
	PriceMaxCents int64
	Host          HostID
	VisibleOnly   bool
	Limit         int
	Offset        int
}

// Normalized clamps paging values into a sane range.
func (p SearchParams) Normalized() SearchParams {
	out := p
	if out.Limit <= 0 {
		out.Limit = defaultSearchLimit
	}
	if out.Limit > maxSearchLimit {
		out.Limit = maxSearchLimit
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return out
}

type SearchResult struct {
	Items []*Property
	Total int
}
