package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type BackendPinger interface {
	Ping(ctx context.Context) error
}

type BrokerStatus interface {
	Healthy() bool
}

type SessionStatus interface {
	Authenticated() bool
}

type HealthHandler struct {
	Backend   BackendPinger
	DB        *sql.DB
	Broker    BrokerStatus
	Session   SessionStatus
	Version   string
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Session      string            `json:"session"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(backend BackendPinger, db *sql.DB, broker BrokerStatus, session SessionStatus, version string) *HealthHandler {
	return &HealthHandler{
		Backend:   backend,
		DB:        db,
		Broker:    broker,
		Session:   session,
		Version:   version,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]string)

	// Check Backend
	if h.Backend != nil {
		if err := h.Backend.Ping(ctx); err != nil {
			deps["backend"] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			deps["backend"] = "healthy"
		}
	} else {
		deps["backend"] = "not configured"
	}

	// Check banco local
	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			deps["local_store"] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			deps["local_store"] = "healthy"
		}
	} else {
		deps["local_store"] = "not configured"
	}

	// Check RabbitMQ
	if h.Broker != nil {
		if h.Broker.Healthy() {
			deps["rabbitmq"] = "healthy"
		} else {
			deps["rabbitmq"] = "unhealthy: connection closed"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	session := "anonymous"
	if h.Session != nil && h.Session.Authenticated() {
		session = "authenticated"
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	response := HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Session:      session,
		Dependencies: deps,
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "degraded" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(response)
}
