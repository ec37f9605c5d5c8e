package config

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 500 * time.Millisecond

// Watch reloads path after it changes and hands each valid result to
// onReload until ctx is done. Files that fail to load or validate are logged
// and skipped. The watch is re-armed when an editor replaces the file.
func Watch(ctx context.Context, path string, debounce time.Duration, log zerolog.Logger, onReload func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	log = log.With().Str("component", "config").Str("path", path).Logger()
	log.Info().Dur("debounce", debounce).Msg("config watcher started")

	go func() {
		defer w.Close()
		var timer *time.Timer
		var timerC <-chan time.Time
		arm := func() {
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			timerC = timer.C
		}
		// armed is false while the file is gone after a rename or remove; the
		// watch is retried every debounce period until it is back.
		armed, warned := true, false
		rearm := func() {
			_ = w.Remove(path)
			if err := w.Add(path); err != nil {
				armed = false
				if !warned {
					log.Warn().Err(err).Msg("config file gone; retrying watch")
					warned = true
				}
				return
			}
			if !armed {
				log.Info().Msg("config watch restored")
			}
			armed, warned = true, false
		}

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					arm()
				}
				if ev.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
					rearm()
					arm()
				}

			case <-timerC:
				timerC = nil
				if !armed {
					if rearm(); !armed {
						arm()
						continue
					}
				}
				c, err := Load(path)
				if err == nil {
					err = c.Validate()
				}
				if err != nil {
					log.Warn().Err(err).Msg("config reload rejected")
					continue
				}
				log.Info().Msg("config reloaded")
				onReload(c)

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("config watcher error")
			}
		}
	}()
	return nil
}
