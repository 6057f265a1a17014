package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okulov/cipherpost/store"
)

const (
	eventMessageSent = "MESSAGE_SENT"
	eventMessageRead = "MESSAGE_READ"
)

func auditLogPath(username string) string {
	return "logs/" + username + "/messages.log"
}

// appendAudit adds one human-readable line to username's audit trail. The
// trail is append-only and never parsed back by the system.
func (s *Service) appendAudit(ctx context.Context, username string, event string, from string, to string, messageId string) error {
	path := auditLogPath(username)

	content, revision, err := s.Store.Fetch(ctx, path)
	if err != nil && !errors.Is(err, store.ErrBlobNotFound) {
		return err
	}

	line := fmt.Sprintf("[%s] %s: %s -> %s (ID: %s)\n", CurrentTimestamp(), event, from, to, messageId)
	content = append(content, []byte(line)...)

	commitMessage := fmt.Sprintf("Log %s for %s", event, username)
	return s.Store.Put(ctx, path, content, commitMessage, revision)
}

func nowUnix() int64 {
	return time.Now().Unix()
}
