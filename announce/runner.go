// Package announce drives one Slack channel for one conference room: it
// polls the event timetable on a timer and posts each session and talk when
// its start time arrives.
package announce

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inditools/indico"
	"inditools/metric"
	"inditools/model"
	"inditools/slack"
	"inditools/utils"
)

// pending is one entry whose announcement is due this tick.
type pending struct {
	kind string
	sess indico.Session
	talk indico.Contribution // only set for talks
}

// Runner announces the timetable of a single room. Run one process per room;
// runners share nothing.
type Runner struct {
	as      *utils.AppState
	client  *indico.Client
	channel *slack.Channel
	clock   *utils.Clock

	room  string
	delay time.Duration

	lastTick time.Time
}

func NewRunner(as *utils.AppState, client *indico.Client, channel *slack.Channel, clock *utils.Clock, room string, delay time.Duration) *Runner {
	return &Runner{
		as:      as,
		client:  client,
		channel: channel,
		clock:   clock,
		room:    room,
		delay:   delay,
	}
}

// Run polls until the context is cancelled. Entries that started before Run
// was called are never announced. Any error is fatal: there is no retry
// policy, the operator restarts the process.
func (r *Runner) Run(ctx context.Context) error {
	r.lastTick = r.clock.Now()
	slog.Info("watching room", "room", r.room, "poll_interval", r.as.Config.GetPollInterval(), "time", r.lastTick)

	ticker := time.NewTicker(r.as.Config.GetPollInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.tick(ctx); err != nil {
				return fmt.Errorf("(*Runner).Run: %w", err)
			}
		}
	}
}

func (r *Runner) tick(ctx context.Context) error {
	sessions, err := r.client.GetSessions(ctx)
	if err != nil {
		return err
	}
	now := r.clock.Now()
	slog.Debug("tick", "time", now, "sessions", len(sessions))

	due := plan(sessions, r.room, r.as.Config.GetContributionTypeFilters(), r.delay, r.lastTick, now)
	for _, p := range due {
		if err := r.announce(ctx, p); err != nil {
			return err
		}
	}

	r.lastTick = now
	return nil
}

func (r *Runner) announce(ctx context.Context, p pending) error {
	entryID, title := entryKey(p)

	announced, err := model.AnnouncementExists(ctx, r.as.BunDB, r.as.Config.GetEventID(), p.kind, entryID)
	if err != nil {
		return err
	}
	if announced {
		slog.Debug("already announced", "kind", p.kind, "entry", entryID)
		return nil
	}

	slog.Info("announcing", "kind", p.kind, "title", utils.TruncateString(title, 37), "room", r.room)
	switch p.kind {
	case model.KindSession:
		if err := r.channel.AnnounceSession(ctx, p.sess); err != nil {
			return err
		}
	case model.KindTalk:
		if err := r.channel.AnnounceTalk(ctx, p.sess, p.talk); err != nil {
			return err
		}
	}
	metric.Announcements.WithLabelValues(p.kind).Inc()

	announcement := model.Announcement{
		EventID:          r.as.Config.GetEventID(),
		Kind:             p.kind,
		EntryID:          entryID,
		Room:             r.room,
		Title:            title,
		StartDateUnixUTC: startOf(p).UTC().Unix(),
	}
	return announcement.Insert(ctx, r.as.BunDB)
}

func entryKey(p pending) (entryID, title string) {
	if p.kind == model.KindTalk {
		return string(p.talk.ID), p.talk.Title
	}
	return string(p.sess.ID), p.sess.Title
}

func startOf(p pending) time.Time {
	if p.kind == model.KindTalk {
		return p.talk.StartDate.Time
	}
	return p.sess.StartDate.Time
}

// plan picks the entries of the given room whose announcement time falls in
// (lastTick, now]. A session is announced at its start; its first talk (one
// starting together with the session) goes out at the same moment with no
// delay; later talks are delayed by the configured schedule delay. Entries
// already over, and contribution types on the filter list, never announce.
func plan(sessions []indico.Session, room string, typeFilters []string, delay time.Duration, lastTick, now time.Time) []pending {
	isDue := func(t time.Time) bool {
		return t.After(lastTick) && !t.After(now)
	}

	var due []pending
	for _, sess := range sessions {
		if sess.Room != room {
			continue
		}
		if now.After(sess.EndDate.Time) {
			continue
		}

		if isDue(sess.StartDate.Time) {
			due = append(due, pending{kind: model.KindSession, sess: sess})
		}

		for _, talk := range sess.Contributions {
			if now.After(talk.EndDate.Time) {
				continue
			}
			if filtered(typeFilters, talk.Type) {
				slog.Debug("skipping contribution with filtered type", "type", talk.Type)
				continue
			}

			announceAt := talk.StartDate.Add(delay)
			if talk.StartDate.Equal(sess.StartDate.Time) {
				// first in the session, never delayed
				announceAt = sess.StartDate.Time
			}
			if isDue(announceAt) {
				due = append(due, pending{kind: model.KindTalk, sess: sess, talk: talk})
			}
		}
	}
	return due
}

func filtered(typeFilters []string, contributionType string) bool {
	for _, f := range typeFilters {
		if f == contributionType {
			return true
		}
	}
	return false
}
