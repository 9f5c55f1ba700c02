package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/fitlab-service/internal/domain"
	"github.com/spec-kit/fitlab-service/internal/events"
)

// validID reports whether id is a well formed UUID. Malformed ids never reach the store.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// canonicalID returns id in the lowercase hyphenated form the store emits, so ids supplied in
// other spellings still match keys read back from the database.
func canonicalID(id string) (string, bool) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func adminActor(email string) events.Actor {
	return events.Actor{Role: domain.RoleAdmin, ID: email}
}

func userActor(role domain.Role, id string) events.Actor {
	return events.Actor{Role: role, ID: id}
}

func nopLogger(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
