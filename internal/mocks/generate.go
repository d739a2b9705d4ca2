// Package mocks provides gomock implementations of the core ports for tests.
//
// Regenerate with `go generate ./internal/mocks`.
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_repository_mock.go github.com/salesintel/sales-intelligence-api/internal/core/ports UserRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=sales_repository_mock.go github.com/salesintel/sales-intelligence-api/internal/core/ports SalesRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=insight_repository_mock.go github.com/salesintel/sales-intelligence-api/internal/core/ports InsightRepository
