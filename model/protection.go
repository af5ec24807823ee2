package model

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Protection is an audit row for one attachment switched from public to
// registrants-only.
type Protection struct {
	bun.BaseModel `bun:"table:protections"`

	ID           string `bun:"id,pk"`                 // required
	EventID      int    `bun:"event_id,notnull"`      // required
	AttachmentID int    `bun:"attachment_id,notnull"` // required
	Filename     string `bun:"filename"`
	ACL          string `bun:"acl"`

	ProtectedAtUnixUTC int64 `bun:"protected_at,notnull"`
}

func (p *Protection) Insert(ctx context.Context, db bun.IDB) error {
	switch {
	case p.EventID == 0:
		return fmt.Errorf("(*Protection).Insert: event id is blank")
	case p.AttachmentID == 0:
		return fmt.Errorf("(*Protection).Insert: attachment id is blank")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.ProtectedAtUnixUTC == 0 {
		p.ProtectedAtUnixUTC = time.Now().UTC().Unix()
	}

	if _, err := db.NewInsert().
		Model(p).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Protection).Insert: %w", err)
	}
	return nil
}
