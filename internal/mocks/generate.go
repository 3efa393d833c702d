// Package mocks provides gomock implementations of the desk's ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	gw := mocks.NewMockBackendGateway(ctrl)
//	gw.EXPECT().WhoAmI(gomock.Any(), "access").Return(user, nil)
package mocks

// Generate mock for BackendGateway interface from internal/ports package.
// This creates MockBackendGateway with methods: WhoAmI, Refresh, Login, Logout
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=backend_gateway_mock.go github.com/target/hrdesk/internal/ports BackendGateway

// Generate mock for QueryCache interface from internal/ports package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=query_cache_mock.go github.com/target/hrdesk/internal/ports QueryCache
