package cache

import "context"

// InboxEntry is a cached inbox blob together with the revision token it was
// fetched at. The cache is never a source of truth: a miss or a cache error
// just falls back to the remote store.
type InboxEntry struct {
	Content  []byte
	Revision string
}

type InboxCache interface {
	Publish(ctx context.Context, channel string, message []byte) error
	Subscribe(ctx context.Context, channel string, handler func(message []byte)) error

	// GetInbox returns nil without error on a miss.
	GetInbox(ctx context.Context, username string) (*InboxEntry, error)
	SetInbox(ctx context.Context, username string, entry InboxEntry) error
	InvalidateInbox(ctx context.Context, username string) error
}
