package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"icalsplit/src-splitter/metric"
	"icalsplit/src-splitter/model"
	"icalsplit/src-splitter/route"
	"icalsplit/src-splitter/scheduler"
	"icalsplit/src-splitter/split"
	"icalsplit/src-splitter/utils"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	as := utils.NewAppState()

	if err := model.CreateSchema(as.BunDb); err != nil {
		slog.Error("can't create database schema", "error", err)
		os.Exit(1)
	}

	// one pass always happens; serve mode keeps going afterwards
	report, err := split.Run(context.Background(), as)
	if err != nil {
		slog.Error("refresh failed", "error", err)
		if errors.Is(err, split.ErrUpstreamParse) {
			os.Exit(3)
		}
		os.Exit(1)
	}

	if !as.Config.GetServe() {
		as.GracefulShutdown()
		return
	}

	metric.Init()
	metric.Record(report)

	refresh := func() {
		report, err := split.Run(context.Background(), as)
		if err != nil {
			slog.Error("refresh failed", "error", err)
			return
		}
		metric.Record(report)
	}
	if err := scheduler.Refresh(as, refresh); err != nil {
		slog.Error("can't schedule refreshes", "error", err)
		os.Exit(1)
	}
	scheduler.WatchRules(as, refresh)

	// http server
	go func() {
		muxer := http.NewServeMux()
		muxer.Handle("GET /metrics", promhttp.Handler())
		route.Feeds(muxer, as)
		route.About(muxer, as)
		if err := http.ListenAndServe(":"+as.Config.GetPort(), muxer); err != nil {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("app is now running, press Ctrl+C to exit")

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan
	as.GracefulShutdown()

	slog.Info("Gracefully shutting down...")
}
