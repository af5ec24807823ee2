// Package protect walks all presentation material of the event and
// restricts any attachment that is still public to registrants, using the
// ACL of the event's registration form.
package protect

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"inditools/indico"
	"inditools/metric"
	"inditools/model"
	"inditools/utils"
)

type Protector struct {
	as     *utils.AppState
	client *indico.Client
}

func NewProtector(as *utils.AppState, client *indico.Client) *Protector {
	return &Protector{
		as:     as,
		client: client,
	}
}

// Run is a single pass over the event: already-protected attachments are
// left alone, everything else gets the registration-form ACL and the
// protection notice appended to its description.
func (p *Protector) Run(ctx context.Context) error {
	regs, err := p.client.GetRegistrationForms(ctx)
	if err != nil {
		return fmt.Errorf("(*Protector).Run: %w", err)
	}
	if len(regs) == 0 {
		return fmt.Errorf("(*Protector).Run: no registration forms returned")
	}
	if len(regs) > 1 {
		return fmt.Errorf("(*Protector).Run: not sure what to do with multiple registration forms, use one or all of them? saw %+v", regs)
	}
	regIdent := regs[0].Identifier

	acl, err := json.Marshal([]string{regIdent})
	if err != nil {
		return fmt.Errorf("(*Protector).Run: %w", err)
	}

	sessions, err := p.client.GetSessions(ctx)
	if err != nil {
		return fmt.Errorf("(*Protector).Run: %w", err)
	}

	for _, sess := range sessions {
		for _, cont := range sess.Contributions {
			for _, folder := range cont.Folders {
				slog.Debug("contribution folder", "url", cont.URL, "folder", folder.ID)

				for _, attach := range folder.Attachments {
					if attach.IsProtected {
						continue
					}

					slog.Info("protecting attachment", "filename", attach.Filename, "acl", regIdent)
					changes := url.Values{
						// This description appears on hover, everyone sees
						// it, even when not logged in
						"description": []string{Description(attach.Description, p.as.Config.GetProtectMessage())},
						"protected":   []string{"y"},
						"acl":         []string{string(acl)},
					}
					if err := p.client.UpdateAttachment(ctx, attach, changes); err != nil {
						return fmt.Errorf("(*Protector).Run: %w", err)
					}
					metric.Protections.Inc()

					protection := model.Protection{
						EventID:      p.as.Config.GetEventID(),
						AttachmentID: attach.ID,
						Filename:     attach.Filename,
						ACL:          regIdent,
					}
					if err := protection.Insert(ctx, p.as.BunDB); err != nil {
						return fmt.Errorf("(*Protector).Run: %w", err)
					}
				}
			}
		}
	}
	return nil
}

// Description appends the protection notice after any existing description.
func Description(existing, notice string) string {
	if existing == "" {
		return notice
	}
	slog.Debug("keeping existing description", "description", existing)
	return strings.Join([]string{existing, notice}, ".\n\n")
}
