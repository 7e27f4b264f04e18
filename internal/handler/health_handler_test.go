// internal/handler/health_handler_test.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"meter-print-service/internal/bluetooth"
	"meter-print-service/internal/bluetooth/bluetoothtest"
	"meter-print-service/internal/config"
)

type stubPinger struct{ err error }

func (s stubPinger) HealthCheck(context.Context) error { return s.err }

func newHealthRouter(t *testing.T, db Pinger, adapter AdapterStatus) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		App:       config.AppConfig{Name: "meter-print-service", Version: "test"},
		Bluetooth: config.BluetoothConfig{Adapter: "hci0", Transport: "rfcomm"},
	}
	router := gin.New()
	NewHealthHandler(db, adapter, cfg, zaptest.NewLogger(t)).RegisterRoutes(router.Group(""))
	return router
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name      string
		db        Pinger
		adapter   AdapterStatus
		wantCode  int
		wantBT    string
		wantReady int
	}{
		{"idle adapter", stubPinger{}, bluetooth.NewProvider(nil), http.StatusOK, "idle", http.StatusOK},
		{"acquired adapter", stubPinger{}, bluetooth.StaticProvider(bluetoothtest.NewFakeAdapter()), http.StatusOK, "healthy", http.StatusOK},
		{"database down", stubPinger{err: errors.New("locked")}, bluetooth.NewProvider(nil), http.StatusServiceUnavailable, "idle", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newHealthRouter(t, tt.db, tt.adapter)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			if w.Code != tt.wantCode {
				t.Fatalf("/health status = %d, want %d", w.Code, tt.wantCode)
			}

			var health HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
				t.Fatal(err)
			}
			if got := health.Checks["bluetooth"].Status; got != tt.wantBT {
				t.Errorf("bluetooth check = %q, want %q", got, tt.wantBT)
			}

			w = httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
			if w.Code != tt.wantReady {
				t.Errorf("/ready status = %d, want %d", w.Code, tt.wantReady)
			}

			w = httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))
			if w.Code != http.StatusOK {
				t.Errorf("/live status = %d", w.Code)
			}
		})
	}
}
