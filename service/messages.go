package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/okulov/cipherpost/cache"
	"github.com/okulov/cipherpost/inboxlog"
	"github.com/okulov/cipherpost/models"
	"github.com/okulov/cipherpost/store"
)

// User identifiers are interpolated into these paths verbatim. Path-breaking
// characters in a username are a known, unhandled defect.
func inboxPath(username string) string {
	return "messages/" + username + "/inbox.txt"
}

type InboxEventData struct {
	Username string         `json:"username"`
	Message  models.Message `json:"message"`
}

type InboxEventMessage struct {
	Type string         `json:"type"`
	Data InboxEventData `json:"data"`
}

// Send encrypts message, appends it to the recipient's inbox and writes a
// MESSAGE_SENT audit line. The two writes are not atomic: if the audit write
// fails, the inbox append stays committed and the error is surfaced anyway.
func (s *Service) Send(ctx context.Context, from string, to string, message string) (models.Message, error) {
	if from == "" || to == "" || message == "" {
		return models.Message{}, fmt.Errorf("%w: from, to and message are required", ErrMissingFields)
	}

	id, err := NewMessageId()
	if err != nil {
		return models.Message{}, err
	}

	record := models.Message{
		Id:        id,
		From:      from,
		To:        to,
		Message:   Transform(message),
		Timestamp: CurrentTimestamp(),
		Decrypted: false,
	}

	content, revision, err := s.Store.Fetch(ctx, inboxPath(to))
	if err != nil && !errors.Is(err, store.ErrBlobNotFound) {
		return models.Message{}, err
	}

	blob, err := inboxlog.Append(content, record)
	if err != nil {
		return models.Message{}, err
	}

	commitMessage := fmt.Sprintf("Add message %s from %s to %s", id, from, to)
	if err := s.Store.Put(ctx, inboxPath(to), blob, commitMessage, revision); err != nil {
		return models.Message{}, err
	}

	// The inbox append is committed from here on, so cached copies are stale
	// even when the audit write below fails.
	go func() {
		s.Cache.InvalidateInbox(context.Background(), to)
		s.publishInboxEvent(context.Background(), "new_message", to, record)
	}()

	if err := s.appendAudit(ctx, to, eventMessageSent, from, to, id); err != nil {
		return models.Message{}, err
	}

	return record, nil
}

// List returns every parsed record in username's inbox, in file order. An
// absent inbox is an empty collection, not an error. Malformed lines are
// excluded from the result but stay in the stored blob.
func (s *Service) List(ctx context.Context, username string) ([]models.Message, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrMissingFields)
	}

	entry, err := s.Cache.GetInbox(ctx, username)
	if err != nil {
		// Treat a cache failure as a miss
		log.Printf("Inbox cache read failed for %s: %v", username, err)
		entry = nil
	}
	if entry != nil {
		return inboxlog.Records(inboxlog.Parse(entry.Content)), nil
	}

	content, revision, err := s.Store.Fetch(ctx, inboxPath(username))
	if err != nil {
		if errors.Is(err, store.ErrBlobNotFound) {
			return []models.Message{}, nil
		}
		return nil, err
	}

	if err := s.Cache.SetInbox(ctx, username, cache.InboxEntry{Content: content, Revision: revision}); err != nil {
		log.Printf("Inbox cache fill failed for %s: %v", username, err)
	}

	return inboxlog.Records(inboxlog.Parse(content)), nil
}

// Decrypt marks the message as read in username's inbox, appends a
// MESSAGE_READ audit line and returns the record with its plaintext. Reading
// an already-read message succeeds and returns the same plaintext. The
// decrypted flag flips permanently even if the audit write fails afterwards.
func (s *Service) Decrypt(ctx context.Context, username string, messageId string) (models.Message, string, error) {
	if username == "" || messageId == "" {
		return models.Message{}, "", fmt.Errorf("%w: username and messageId are required", ErrMissingFields)
	}

	content, revision, err := s.Store.Fetch(ctx, inboxPath(username))
	if err != nil {
		if errors.Is(err, store.ErrBlobNotFound) {
			return models.Message{}, "", ErrMessageNotFound
		}
		return models.Message{}, "", err
	}

	lines := inboxlog.Parse(content)
	record, found := inboxlog.MarkRead(lines, messageId)
	if !found {
		return models.Message{}, "", ErrMessageNotFound
	}

	blob, err := inboxlog.Serialize(lines)
	if err != nil {
		return models.Message{}, "", err
	}

	commitMessage := fmt.Sprintf("Mark message %s as read", messageId)
	if err := s.Store.Put(ctx, inboxPath(username), blob, commitMessage, revision); err != nil {
		return models.Message{}, "", err
	}

	// The decrypted flag is committed, invalidate before the audit write can fail
	go func() {
		s.Cache.InvalidateInbox(context.Background(), username)
		s.publishInboxEvent(context.Background(), "message_read", username, *record)
	}()

	if err := s.appendAudit(ctx, username, eventMessageRead, record.From, record.To, messageId); err != nil {
		return models.Message{}, "", err
	}

	return *record, Transform(record.Message), nil
}

// TestConnection writes a throwaway timestamped blob as a connectivity probe
// and returns its path. Probe blobs are never cleaned up.
func (s *Service) TestConnection(ctx context.Context) (string, error) {
	path := fmt.Sprintf("test/connection_test_%d.txt", nowUnix())
	content := []byte("Connection test at " + CurrentTimestamp() + "\n")
	if err := s.Store.Put(ctx, path, content, "Connectivity test", ""); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Service) publishInboxEvent(ctx context.Context, eventType string, username string, record models.Message) {
	msg := InboxEventMessage{
		Type: eventType,
		Data: InboxEventData{Username: username, Message: record},
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.Cache.Publish(ctx, "inbox:"+username, msgBytes); err != nil {
		log.Printf("Failed to publish %s for %s: %v", eventType, username, err)
	}
}
