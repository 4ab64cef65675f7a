// internal/domain/location/model.go

package location

// Status represents a record's lifecycle state in the directory.
type Status string

const (
	StatusCandidate Status = "candidate"
	StatusVerified  Status = "verified"
	StatusRetired   Status = "retired"
)

// CategoryOther is the catch-all bucket excluded from derived category lists.
const CategoryOther = "other"

// Record is a single directory entry as served by the location API.
// Coordinates are optional: records without them still appear in lists and
// search results even though they cannot be pinned on the map.
type Record struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address,omitempty"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	CategoryKey   string   `json:"category"`
	CategoryLabel string   `json:"categoryLabel,omitempty"`
	Status        Status   `json:"status"`
	Confidence    *float64 `json:"confidenceScore,omitempty"`
}

// HasCoordinates returns true when the record can be placed on the map.
func (r Record) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Category is a distinct category entry used for filter chips.
type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// FetchState is a snapshot of one dataset fetch surface. Error holds the last
// failure message; records from before the failure are retained.
type FetchState struct {
	Locations []Record `json:"locations"`
	Loading   bool     `json:"loading"`
	Error     string   `json:"error,omitempty"`
}

// SearchState is a snapshot of the committed search: the debounced query with
// its filtered results and suggestions.
type SearchState struct {
	DebouncedQuery string   `json:"debouncedQuery"`
	Filtered       []Record `json:"filtered"`
	Suggestions    []string `json:"suggestions"`
}

// FilterByStatus returns the records in the given lifecycle state.
func FilterByStatus(records []Record, status Status) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out
}
