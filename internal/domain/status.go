package domain

// ReadingStatus is the closed set of shelf states for a library entry.
type ReadingStatus string

const (
	StatusTBR       ReadingStatus = "tbr"
	StatusReading   ReadingStatus = "reading"
	StatusRead      ReadingStatus = "read"
	StatusPaused    ReadingStatus = "paused"
	StatusAbandoned ReadingStatus = "abandoned"
)

// ReadingStatuses lists every status in shelf order.
var ReadingStatuses = []ReadingStatus{StatusTBR, StatusReading, StatusRead, StatusPaused, StatusAbandoned}

var statusLabels = map[ReadingStatus]string{
	StatusTBR:       "TBR",
	StatusReading:   "Reading",
	StatusRead:      "Read",
	StatusPaused:    "Paused",
	StatusAbandoned: "Abandoned",
}

// ParseReadingStatus converts wire input to a ReadingStatus.
func ParseReadingStatus(s string) (ReadingStatus, bool) {
	st := ReadingStatus(s)
	return st, st.Valid()
}

// Valid reports whether s is a known status.
func (s ReadingStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// StatusLabel returns the display label for a status, or "" when unknown.
func StatusLabel(s ReadingStatus) string {
	return statusLabels[s]
}
