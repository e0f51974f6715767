package health

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPChecker_HealthyEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := NewHTTPChecker(server.URL).Check(context.Background())

	if !result.Healthy {
		t.Errorf("Expected healthy, got unhealthy: %s", result.Message)
	}
	if result.Duration <= 0 {
		t.Error("Expected positive duration")
	}
}

func TestHTTPChecker_UnhealthyEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	result := NewHTTPChecker(server.URL).Check(context.Background())

	if result.Healthy {
		t.Errorf("Expected unhealthy, got healthy: %s", result.Message)
	}
}

func TestHTTPChecker_CustomStatusRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	result := NewHTTPChecker(server.URL).WithStatusRange(200, 299).Check(context.Background())

	if !result.Healthy {
		t.Errorf("Expected healthy for 201 status, got unhealthy: %s", result.Message)
	}
}

func TestHTTPChecker_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := NewHTTPChecker(server.URL).WithTimeout(50 * time.Millisecond).Check(context.Background())

	if result.Healthy {
		t.Errorf("Expected unhealthy due to timeout, got healthy: %s", result.Message)
	}
}

func TestTCPChecker(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer listener.Close()

	result := NewTCPChecker(listener.Addr().String()).Check(context.Background())
	if !result.Healthy {
		t.Errorf("Expected healthy for open port, got unhealthy: %s", result.Message)
	}

	// A closed port must fail
	addr := listener.Addr().String()
	listener.Close()
	result = NewTCPChecker(addr).Check(context.Background())
	if result.Healthy {
		t.Error("Expected unhealthy for closed port")
	}
}

func TestCheckerTypes(t *testing.T) {
	if NewHTTPChecker("http://example.com").Type() != CheckTypeHTTP {
		t.Error("Wrong type for HTTP checker")
	}
	if NewTCPChecker("127.0.0.1:1").Type() != CheckTypeTCP {
		t.Error("Wrong type for TCP checker")
	}
}

func TestStatusRetryThreshold(t *testing.T) {
	config := DefaultConfig()
	config.Retries = 3
	status := NewStatus()

	failed := Result{Healthy: false, CheckedAt: time.Now()}

	// Below the threshold the target stays healthy
	status.Update(failed, config)
	status.Update(failed, config)
	if !status.Healthy {
		t.Error("Status flipped before reaching the retry threshold")
	}

	status.Update(failed, config)
	if status.Healthy {
		t.Error("Status should be unhealthy after three consecutive failures")
	}

	// One success recovers immediately
	status.Update(Result{Healthy: true, CheckedAt: time.Now()}, config)
	if !status.Healthy {
		t.Error("Status should recover after a success")
	}
	if status.ConsecutiveFailures != 0 {
		t.Error("Failure counter should reset on success")
	}
}
