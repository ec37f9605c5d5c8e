package app

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Serve runs the preview HTTP server until ctx is done. It returns at once
// when preview is disabled.
func (c *Core) Serve(ctx context.Context) error {
	if c.Preview == nil {
		return nil
	}
	srv := &http.Server{
		Addr:         c.Cfg.Preview.Addr,
		Handler:      c.Preview.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	c.log.Info().Str("addr", srv.Addr).Str("driver", c.DriverName).Msg("HTTP server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
