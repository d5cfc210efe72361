package settings

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"rivo_backend/platform/logger"
)

// WatchSIGHUP reloads the store whenever the process receives SIGHUP, until
// ctx is done.
func (st *Store) WatchSIGHUP(ctx context.Context, log *logger.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP)
	go func() {
		defer signal.Stop(sig)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sig:
				if err := st.Reload(); err != nil {
					log.Error("settings reload failed", "path", st.path, "error", err)
					continue
				}
				log.Info("settings reloaded", "path", st.path)
			}
		}
	}()
}
