// Command slack-announce announces the sessions and talks of one conference
// room to the room's Slack channel as their start times arrive. Run one
// instance per room.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"inditools/announce"
	"inditools/indico"
	"inditools/metric"
	"inditools/model"
	"inditools/slack"
	"inditools/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "configuration file")
	debug := flag.Bool("debug", false, "write debug information to the terminal")
	room := flag.String("room", "", "room to monitor; prompts interactively when empty")
	simulatedStart := flag.String("simulated-start", "", "spoof the system clock as if it read this time when the process started; ISO 8601 (YYYY-MM-DDTHH:MM:SS) or natural language, event timezone assumed")
	scheduleDelay := flag.Duration("schedule-delay", 0, "delay the announcement of talks other than the first in each session by this much")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC1123Z,
		}),
	))

	as := utils.NewAppState(*configPath)
	if err := model.CreateSchema(as.BunDB); err != nil {
		slog.Error("can't create database schema", "error", err)
		os.Exit(1)
	}

	location := as.Config.GetLocation()
	client := indico.NewClient(
		as.Config.GetInstanceURL(),
		as.Config.GetEventID(),
		as.Config.GetAPIToken(),
		as.Config.GetTimezone(),
		nil,
	)

	clock := utils.NewClock(location)
	if *simulatedStart != "" {
		start, err := utils.ParseStartTime(as.When, location, *simulatedStart)
		if err != nil {
			slog.Error("invalid -simulated-start", "error", err)
			os.Exit(1)
		}
		slog.Debug("spoofing system clock", "start", start)
		clock.Simulate(start)
	}
	if *scheduleDelay != 0 {
		slog.Debug("delaying talk announcements", "delay", *scheduleDelay)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slog.Debug("fetching session information...")
	sessions, err := client.GetSessions(ctx)
	if err != nil {
		slog.Error("can't fetch sessions", "error", err)
		os.Exit(1)
	}
	slog.Debug("done", "sessions", len(sessions))

	roomChoice := *room
	if roomChoice == "" {
		roomChoice, err = announce.ChooseRoom(os.Stdin, os.Stdout, sessions)
		if err != nil {
			slog.Error("can't choose a room", "error", err)
			os.Exit(1)
		}
	}
	fmt.Println("Selected:", roomChoice)

	channelName, ok := as.Config.GetChannelMap()[roomChoice]
	if !ok {
		slog.Error("configuration does not map the room to a Slack channel", "room", roomChoice)
		os.Exit(1)
	}
	webhookURL, ok := as.Config.GetWebhooks()[channelName]
	if !ok {
		slog.Error("configuration has no webhook for the channel", "channel", channelName)
		os.Exit(1)
	}
	channel := slack.NewChannel(webhookURL, nil)

	go metric.Serve(as)

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	go func() {
		<-as.AppCloseSignalChan
		cancel()
	}()

	runner := announce.NewRunner(as, client, channel, clock, roomChoice, *scheduleDelay)
	if err := runner.Run(ctx); err != nil {
		slog.Error("announcer stopped", "error", err)
		as.GracefulShutdown()
		os.Exit(1)
	}

	as.GracefulShutdown()
	slog.Info("Gracefully shutting down...")
}
