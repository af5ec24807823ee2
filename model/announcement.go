package model

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	KindSession = "session"
	KindTalk    = "talk"
)

// Announcement is one entry posted to Slack. The announcer checks this
// table before posting so a restart doesn't repeat messages.
type Announcement struct {
	bun.BaseModel `bun:"table:announcements"`

	ID      string `bun:"id,pk"`              // required
	EventID int    `bun:"event_id,notnull"`   // required
	Kind    string `bun:"kind,notnull"`       // required, session or talk
	EntryID string `bun:"entry_id,notnull"`   // required
	Room    string `bun:"room,notnull"`       // required
	Title   string `bun:"title"`

	StartDateUnixUTC   int64 `bun:"start_date,notnull"` // required
	AnnouncedAtUnixUTC int64 `bun:"announced_at,notnull"`
}

func (a *Announcement) Insert(ctx context.Context, db bun.IDB) error {
	switch {
	case a.EventID == 0:
		return fmt.Errorf("(*Announcement).Insert: event id is blank")
	case a.Kind != KindSession && a.Kind != KindTalk:
		return fmt.Errorf("(*Announcement).Insert: kind must be %s or %s", KindSession, KindTalk)
	case a.EntryID == "":
		return fmt.Errorf("(*Announcement).Insert: entry id is blank")
	case a.Room == "":
		return fmt.Errorf("(*Announcement).Insert: room is blank")
	case a.StartDateUnixUTC == 0:
		return fmt.Errorf("(*Announcement).Insert: start date is blank")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AnnouncedAtUnixUTC == 0 {
		a.AnnouncedAtUnixUTC = time.Now().UTC().Unix()
	}

	if _, err := db.NewInsert().
		Model(a).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Announcement).Insert: %w", err)
	}
	return nil
}

// AnnouncementExists reports whether the entry was already announced.
func AnnouncementExists(ctx context.Context, db bun.IDB, eventID int, kind, entryID string) (bool, error) {
	exists, err := db.NewSelect().
		Model((*Announcement)(nil)).
		Where("event_id = ?", eventID).
		Where("kind = ?", kind).
		Where("entry_id = ?", entryID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("AnnouncementExists: %w", err)
	}
	return exists, nil
}
