package models

// UnknownLocation is shown (and by default stored) when an IP cannot be resolved
const UnknownLocation = "Unknown"

// LocationRecord is one cached IP -> location mapping
// A record is written once and never updated or deleted
type LocationRecord struct {
	IP       string `json:"ip"`       // Exact text submitted in the form, not normalized
	Location string `json:"location"` // "city, region, country" or "Unknown"
}

// Resolution is the outcome of asking a resolver about an IP
//
// Fallback is true when the resolver could not produce an answer and
// Location was replaced with UnknownLocation. Err carries the cause.
type Resolution struct {
	Location string
	Fallback bool
	Err      error
}

// Fallen builds a fallback resolution for the given cause
func Fallen(err error) Resolution {
	return Resolution{
		Location: UnknownLocation,
		Fallback: true,
		Err:      err,
	}
}

// Source tells where a lookup result came from
type Source string

const (
	SourceHit      Source = "hit"      // Found in the store
	SourceResolved Source = "resolved" // Resolved upstream on this request
	SourceFallback Source = "fallback" // Upstream failed, "Unknown" substituted
)

// Lookup is what the service hands back to the handler
type Lookup struct {
	IP       string
	Location string
	Source   Source
	Stored   bool // A new record was written by this call
}
