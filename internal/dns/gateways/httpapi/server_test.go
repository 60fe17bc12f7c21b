package httpapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haukened/bindmgr/internal/dns/common/log"
	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/haukened/bindmgr/internal/dns/gateways/httpapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PanicsWithoutService(t *testing.T) {
	assert.Panics(t, func() { httpapi.New(httpapi.Options{Addr: ":0"}) })
}

func TestNew_ServesRegisteredRoutes(t *testing.T) {
	svc := new(mockService)
	svc.On("Health").Return(domain.Health{Status: "healthy", Server: domain.ServerUnknown})
	srv := httpapi.New(httpapi.Options{Addr: "127.0.0.1:5000", APIKey: testKey, Service: svc, Logger: log.NewNoopLogger()})
	assert.Equal(t, "127.0.0.1:5000", srv.Addr())

	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/zones", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	require.NoError(t, srv.Shutdown(context.Background()))
}
