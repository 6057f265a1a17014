package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Fetch(ctx context.Context, path string) ([]byte, string, error) {
	args := m.Called(ctx, path)
	content, _ := args.Get(0).([]byte)
	return content, args.String(1), args.Error(2)
}

func (m *MockStore) Put(ctx context.Context, path string, content []byte, commitMessage string, revision string) error {
	args := m.Called(ctx, path, content, commitMessage, revision)
	return args.Error(0)
}
