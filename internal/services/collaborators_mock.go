package services

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockMailer is a testify mock implementation of Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(to, subject, htmlBody string) error {
	args := m.Called(to, subject, htmlBody)
	return args.Error(0)
}

// MockImageStore is a testify mock implementation of ImageStore.
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, localPath string) (string, error) {
	args := m.Called(ctx, localPath)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Destroy(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}
