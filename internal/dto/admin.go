package dto

// Stats intervals accepted by the /api/stats endpoints.
const (
	IntervalYear  = "year"
	IntervalMonth = "month"
	IntervalWeek  = "week"
	IntervalDay   = "day"
)

// ValidInterval reports whether interval is one of the accepted values.
func ValidInterval(interval string) bool {
	switch interval {
	case IntervalYear, IntervalMonth, IntervalWeek, IntervalDay:
		return true
	}
	return false
}

// TokenResponse is the body of /api/get_token.
type TokenResponse struct {
	AuthKey string `json:"authkey"`
	Error   string `json:"error,omitempty"`
}

// StatsQuery selects the interval for the admin stats endpoints. Zero-valued
// fields are omitted from the request path; the service then defaults to the
// current period.
type StatsQuery struct {
	Interval string
	Year     int
	Month    int
	Week     int
	Day      int
}