package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/okulov/cipherpost/cache"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Publish(ctx context.Context, channel string, message []byte) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

func (m *MockCache) Subscribe(ctx context.Context, channel string, handler func(message []byte)) error {
	args := m.Called(ctx, channel, handler)
	return args.Error(0)
}

func (m *MockCache) GetInbox(ctx context.Context, username string) (*cache.InboxEntry, error) {
	args := m.Called(ctx, username)
	entry, _ := args.Get(0).(*cache.InboxEntry)
	return entry, args.Error(1)
}

func (m *MockCache) SetInbox(ctx context.Context, username string, entry cache.InboxEntry) error {
	args := m.Called(ctx, username, entry)
	return args.Error(0)
}

func (m *MockCache) InvalidateInbox(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}
