// The `scheduler` package triggers refreshes in serve mode: a cron
// schedule for the upstream and a filesystem watch on the rule documents.
package scheduler

import (
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"icalsplit/src-splitter/utils"
)

// Refresh runs runFn on the configured cron schedule until shutdown.
func Refresh(as *utils.AppState, runFn func()) error {
	c := cron.New()
	if _, err := c.AddFunc(as.Config.GetRefreshSchedule(), runFn); err != nil {
		return err
	}
	c.Start()
	slog.Info("refresh scheduled", "schedule", as.Config.GetRefreshSchedule())

	go func() {
		<-as.Done()
		ctx := c.Stop()
		<-ctx.Done()
	}()
	return nil
}

// WatchRules re-runs runFn when a rule document changes, debounced so a
// burst of editor writes triggers one refresh. Watch setup failure is not
// fatal; the cron schedule still picks changes up.
func WatchRules(as *utils.AppState, runFn func()) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("can't watch events dir", "error", err)
		return
	}
	if err := watcher.Add(as.Config.GetEventsDir()); err != nil {
		slog.Warn("can't watch events dir", "dir", as.Config.GetEventsDir(), "error", err)
		watcher.Close()
		return
	}
	slog.Info("watching events dir", "dir", as.Config.GetEventsDir())

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		for {
			select {
			case <-as.Done():
				if debounce != nil {
					debounce.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				slog.Debug("rule document changed", "file", event.Name, "op", event.Op.String())
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(2*time.Second, runFn)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("events dir watch error", "error", err)
			}
		}
	}()
}
