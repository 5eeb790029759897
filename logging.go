package purfectscroll

import (
	"context"

	"pkt.systems/pslog"
)

func loggerOrDefault(logger pslog.Logger) pslog.Logger {
	if logger == nil {
		return pslog.Ctx(context.Background())
	}
	return logger
}

// withSession annotates the logger with a session id when available
func withSession(log pslog.Logger, sessionID string) pslog.Logger {
	if sessionID != "" {
		log = log.With("session", sessionID)
	}
	return log
}
