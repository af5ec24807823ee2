// Command protect-material updates the permissions of all presentation
// material in the event: every attachment still visible to the public is
// restricted to registrants.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"inditools/indico"
	"inditools/model"
	"inditools/protect"
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

	client := indico.NewClient(
		as.Config.GetInstanceURL(),
		as.Config.GetEventID(),
		as.Config.GetAPIToken(),
		as.Config.GetTimezone(),
		nil,
	)

	protector := protect.NewProtector(as, client)
	if err := protector.Run(context.Background()); err != nil {
		slog.Error("protect run failed", "error", err)
		as.GracefulShutdown()
		os.Exit(1)
	}

	as.GracefulShutdown()
}
