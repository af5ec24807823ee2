package indico

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// GetEvent fetches the top-level event record. Token scope: read:legacy_api.
func (c *Client) GetEvent(ctx context.Context) (Event, error) {
	body, err := c.exportGet(ctx, "/export/event", nil)
	if err != nil {
		return Event{}, errors.Wrap(err, "GetEvent")
	}
	var payload struct {
		Results []Event `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Event{}, errors.Wrap(err, "GetEvent")
	}
	if len(payload.Results) == 0 {
		return Event{}, errors.New("GetEvent: empty results")
	}
	return payload.Results[0], nil
}

// GetSessions fetches all timetable sessions of the event, sorted by start
// time then ID to match the ordering in Indico Web; each session's
// contributions are sorted the same way. Token scope: read:legacy_api.
func (c *Client) GetSessions(ctx context.Context) ([]Session, error) {
	params := url.Values{"detail": []string{"sessions"}}
	body, err := c.exportGet(ctx, "/export/event", params)
	if err != nil {
		return nil, errors.Wrap(err, "GetSessions")
	}
	var payload struct {
		Results []struct {
			Sessions []Session `json:"sessions"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "GetSessions")
	}
	if len(payload.Results) == 0 {
		return nil, errors.New("GetSessions: empty results")
	}
	sessions := payload.Results[0].Sessions

	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].StartDate.Equal(sessions[j].StartDate.Time) {
			return sessions[i].StartDate.Before(sessions[j].StartDate.Time)
		}
		return lessID(sessions[i].ID, sessions[j].ID)
	})
	for _, sess := range sessions {
		contributions := sess.Contributions
		sort.SliceStable(contributions, func(i, j int) bool {
			if !contributions[i].StartDate.Equal(contributions[j].StartDate.Time) {
				return contributions[i].StartDate.Before(contributions[j].StartDate.Time)
			}
			return lessID(contributions[i].ID, contributions[j].ID)
		})
	}
	return sessions, nil
}

// GetContributions fetches all contributions of the event, including the
// ones that don't belong to a session, sorted by start time then ID.
// Token scope: read:legacy_api.
func (c *Client) GetContributions(ctx context.Context) ([]Contribution, error) {
	params := url.Values{"detail": []string{"contributions"}}
	body, err := c.exportGet(ctx, "/export/event", params)
	if err != nil {
		return nil, errors.Wrap(err, "GetContributions")
	}
	var payload struct {
		Results []struct {
			Contributions []Contribution `json:"contributions"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "GetContributions")
	}
	if len(payload.Results) == 0 {
		return nil, errors.New("GetContributions: empty results")
	}
	contributions := payload.Results[0].Contributions
	sort.SliceStable(contributions, func(i, j int) bool {
		if !contributions[i].StartDate.Equal(contributions[j].StartDate.Time) {
			return contributions[i].StartDate.Before(contributions[j].StartDate.Time)
		}
		return lessID(contributions[i].ID, contributions[j].ID)
	})
	return contributions, nil
}

// GetTimetable fetches the raw per-day timetable of the event. The structure
// is deeply nested and caller-specific, so it stays raw JSON.
// Token scope: read:legacy_api.
func (c *Client) GetTimetable(ctx context.Context) (json.RawMessage, error) {
	params := url.Values{"detail": []string{"contributions"}}
	body, err := c.exportGet(ctx, "/export/timetable", params)
	if err != nil {
		return nil, errors.Wrap(err, "GetTimetable")
	}
	var payload struct {
		Results map[string]json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "GetTimetable")
	}
	timetable, ok := payload.Results[strconv.Itoa(c.eventID)]
	if !ok {
		return nil, errors.Errorf("GetTimetable: no timetable for event %d", c.eventID)
	}
	return timetable, nil
}

// GetRegistrationForms lists the event's registration forms.
// Token scope: read:everything.
func (c *Client) GetRegistrationForms(ctx context.Context) ([]RegistrationForm, error) {
	body, err := c.apiGet(ctx, "/api/registration-forms")
	if err != nil {
		return nil, errors.Wrap(err, "GetRegistrationForms")
	}
	var forms []RegistrationForm
	if err := json.Unmarshal(body, &forms); err != nil {
		return nil, errors.Wrap(err, "GetRegistrationForms")
	}
	return forms, nil
}

// UpdateAttachment modifies the properties of an attachment through the
// manage API. Token scope: full:everything. The "folder" field must always
// be present; __None means the default folder.
func (c *Client) UpdateAttachment(ctx context.Context, attachment Attachment, changes url.Values) error {
	endpoint, err := manageEndpointForAttachment(attachment.DownloadURL)
	if err != nil {
		return errors.Wrap(err, "UpdateAttachment")
	}
	form := url.Values{"folder": []string{"__None"}}
	for key, values := range changes {
		form[key] = values
	}
	if _, err := c.managePost(ctx, endpoint, form); err != nil {
		return errors.Wrap(err, "UpdateAttachment")
	}
	return nil
}

// manageEndpointForAttachment derives the manage path from the attachment's
// download URL, which already carries the contribution db_id, folder ID, and
// attachment ID: drop the trailing filename and everything before the
// "contributions" segment.
func manageEndpointForAttachment(downloadURL string) (string, error) {
	parsed, err := url.Parse(downloadURL)
	if err != nil {
		return "", errors.Wrapf(err, "bad download URL %q", downloadURL)
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) > 0 {
		segments = segments[:len(segments)-1] // filename
	}
	for len(segments) > 0 && segments[0] != "contributions" {
		segments = segments[1:]
	}
	if len(segments) == 0 {
		return "", errors.Errorf("no contributions segment in download URL %q", downloadURL)
	}
	return "/manage/" + strings.Join(segments, "/"), nil
}
