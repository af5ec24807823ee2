// Package slack posts timetable announcements to Slack channels through
// pre-configured incoming webhook URLs, in the message layout the
// conference channels use (Block Kit; see the Block Kit Builder to preview).
package slack

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"

	"inditools/indico"
	"inditools/utils"
)

// Channel is one Slack channel reachable via its webhook URL.
type Channel struct {
	webhookURL string
	hc         *http.Client
}

// NewChannel returns a channel posting to webhookURL; a nil client means
// http.DefaultClient.
func NewChannel(webhookURL string, hc *http.Client) *Channel {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Channel{
		webhookURL: webhookURL,
		hc:         hc,
	}
}

// AnnounceSession posts the "Starting session ..." header message with the
// conveners and a link into the session timetable.
func (c *Channel) AnnounceSession(ctx context.Context, sess indico.Session) error {
	conveners := joinNames(sess.Conveners)
	if conveners == "" {
		conveners = "N/A"
	}

	// The session page has a tab per day; anchoring the URL on the start
	// date switches to the right one
	betterURL := fmt.Sprintf("%s#%s", sess.URL, sess.StartDate.Format("20060102"))

	mrkdwn := strings.Join([]string{
		fmt.Sprintf("*%s:* %s", plural("Convener", len(sess.Conveners)), conveners),
		fmt.Sprintf("<%s|Click here to view the session timetable>", betterURL),
	}, "\n")

	msg := &slackapi.WebhookMessage{
		Blocks: &slackapi.Blocks{BlockSet: []slackapi.Block{
			slackapi.NewHeaderBlock(slackapi.NewTextBlockObject(
				slackapi.PlainTextType,
				fmt.Sprintf("Starting session %q in %s", sess.Title, sess.Room),
				true, false,
			)),
			slackapi.NewSectionBlock(slackapi.NewTextBlockObject(
				slackapi.MarkdownType, mrkdwn, false, false,
			), nil, nil),
		}},
	}
	if err := slackapi.PostWebhookCustomHTTPContext(ctx, c.webhookURL, c.hc, msg); err != nil {
		return fmt.Errorf("AnnounceSession: %w", err)
	}
	return nil
}

// AnnounceTalk posts one talk of a session, followed by a divider.
func (c *Channel) AnnounceTalk(ctx context.Context, sess indico.Session, talk indico.Contribution) error {
	speakers := joinNames(talk.Speakers)

	mrkdwn := strings.Join([]string{
		fmt.Sprintf("_Talk scheduled from %s–%s in %s_",
			fmtTime(talk.StartDate.Time), fmtTimeMeridian(talk.EndDate.Time), sess.Room),
		fmt.Sprintf("*Title:* <%s|%s>", talk.URL, talk.Title),
		fmt.Sprintf("*%s:* %s", plural("Speaker", len(talk.Speakers)), speakers),
	}, "\n")

	msg := &slackapi.WebhookMessage{
		Blocks: &slackapi.Blocks{BlockSet: []slackapi.Block{
			slackapi.NewSectionBlock(slackapi.NewTextBlockObject(
				slackapi.MarkdownType, mrkdwn, false, false,
			), nil, nil),
			slackapi.NewDividerBlock(),
		}},
	}
	if err := slackapi.PostWebhookCustomHTTPContext(ctx, c.webhookURL, c.hc, msg); err != nil {
		return fmt.Errorf("AnnounceTalk: %w", err)
	}
	return nil
}

// 1:00, no leading zero
func fmtTime(t time.Time) string {
	return t.Format("3:04")
}

// 1:00 PM
func fmtTimeMeridian(t time.Time) string {
	return t.Format("3:04 PM")
}

// joinNames renders an empty string for an empty list; only the session
// convener line substitutes N/A
func joinNames(people []indico.Person) string {
	names := make([]string, len(people))
	for i, person := range people {
		names[i] = utils.CleanupString(person.FullName())
	}
	return strings.Join(names, ", ")
}

func plural(word string, n int) string {
	if n > 1 {
		return word + "s"
	}
	return word
}
