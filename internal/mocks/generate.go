// Package mocks provides mock implementations for testing the ingest system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the port interfaces in internal/core. The mocks are generated using
// go:generate directives and provide a fluent API for setting up test
// expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockIngestionRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(ing, nil)
package mocks

// Generate mock for IngestionRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ingestion_repository_mock.go github.com/docuflow/ingest-api/internal/core IngestionRepository

// Generate mock for Executor interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=executor_mock.go github.com/docuflow/ingest-api/internal/core Executor

// Generate mock for UserRepository interface from internal/core package.
// MockUserRepository also satisfies PrincipalResolver via GetByID.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_repository_mock.go github.com/docuflow/ingest-api/internal/core UserRepository

// Generate mock for DocumentRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=document_repository_mock.go github.com/docuflow/ingest-api/internal/core DocumentRepository

// Generate mock for SessionStore interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_store_mock.go github.com/docuflow/ingest-api/internal/core SessionStore
