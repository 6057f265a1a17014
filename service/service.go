package service

import (
	"errors"

	"github.com/okulov/cipherpost/cache"
	"github.com/okulov/cipherpost/store"
)

type Service struct {
	Store store.BlobStore
	Cache cache.InboxCache
}

var (
	ErrMissingFields   = errors.New("missing required fields")
	ErrMessageNotFound = errors.New("message not found")
)

func NewService(blobStore store.BlobStore, inboxCache cache.InboxCache) *Service {
	return &Service{
		Store: blobStore,
		Cache: inboxCache,
	}
}
