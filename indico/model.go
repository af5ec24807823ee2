package indico

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID holds an Indico identifier. The legacy export emits these both as JSON
// numbers and as strings depending on the entity, so decoding is lenient.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*id = ID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("(*ID).UnmarshalJSON: %w", err)
	}
	*id = ID(s)
	return nil
}

// lessID orders identifiers numerically when both sides are numeric,
// lexically otherwise, so "9" sorts before "10".
func lessID(a, b ID) bool {
	an, aerr := strconv.ParseInt(string(a), 10, 64)
	bn, berr := strconv.ParseInt(string(b), 10, 64)
	if aerr == nil && berr == nil {
		return an < bn
	}
	return a < b
}

// Stamp is an Indico API timestamp: {"date": ..., "time": ..., "tz": ...},
// decoded in the stamp's own timezone.
type Stamp struct {
	time.Time
}

func (s *Stamp) UnmarshalJSON(b []byte) error {
	var raw struct {
		Date string `json:"date"`
		Time string `json:"time"`
		Tz   string `json:"tz"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("(*Stamp).UnmarshalJSON: %w", err)
	}
	loc, err := time.LoadLocation(raw.Tz)
	if err != nil {
		return fmt.Errorf("(*Stamp).UnmarshalJSON: bad tz %q: %w", raw.Tz, err)
	}
	// Some endpoints include fractional seconds
	clock := raw.Time
	if i := strings.IndexByte(clock, '.'); i != -1 {
		clock = clock[:i]
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", raw.Date+" "+clock, loc)
	if err != nil {
		return fmt.Errorf("(*Stamp).UnmarshalJSON: %w", err)
	}
	s.Time = t
	return nil
}

type Person struct {
	Title     string `json:"title"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName builds "Dr. Jane Doe" from the parts the API returns, "-" when
// there is nothing to work with.
func (p Person) FullName() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{p.Title, p.FirstName, p.LastName} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

type Attachment struct {
	ID          int    `json:"id"`
	Filename    string `json:"filename"`
	DownloadURL string `json:"download_url"`
	Description string `json:"description"`
	IsProtected bool   `json:"is_protected"`
}

type Folder struct {
	ID          ID           `json:"id"`
	Title       string       `json:"title"`
	Attachments []Attachment `json:"attachments"`
}

type Contribution struct {
	ID        ID       `json:"id"`
	DBID      int      `json:"db_id"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Room      string   `json:"room"`
	Type      string   `json:"type"`
	StartDate Stamp    `json:"startDate"`
	EndDate   Stamp    `json:"endDate"`
	Speakers  []Person `json:"speakers"`
	Folders   []Folder `json:"folders"`
}

// SessionInfo is the session block nested inside a timetable slot; its title
// is the session "type" title rather than the slot title.
type SessionInfo struct {
	Title string `json:"title"`
}

type Session struct {
	ID            ID             `json:"id"`
	Title         string         `json:"title"`
	SlotTitle     string         `json:"slotTitle"`
	URL           string         `json:"url"`
	Room          string         `json:"room"`
	StartDate     Stamp          `json:"startDate"`
	EndDate       Stamp          `json:"endDate"`
	Conveners     []Person       `json:"conveners"`
	Contributions []Contribution `json:"contributions"`
	Session       SessionInfo    `json:"session"`
}

type Event struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Room      string `json:"room"`
	Timezone  string `json:"timezone"`
	StartDate Stamp  `json:"startDate"`
	EndDate   Stamp  `json:"endDate"`
}

type RegistrationForm struct {
	ID         int    `json:"id"`
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
}
