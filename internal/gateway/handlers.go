// Package gateway exposes the bot's HTTP control API.
package gateway

import (
	"encoding/json"
	"log"
	"net/http"

	"paperbot/internal/bot"
	"paperbot/internal/model"
)

// History bounds for the status snapshot.
const (
	statusPriceHistoryN = 50
	statusLogN          = 50
)

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type configResponse struct {
	Success bool                `json:"success"`
	Config  model.TradingConfig `json:"config"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// preflight handles OPTIONS and rejects methods other than want.
// Returns false when the request was fully handled here.
func preflight(w http.ResponseWriter, r *http.Request, want string) bool {
	SetCORS(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return false
	}
	if r.Method != want {
		writeJSON(w, http.StatusMethodNotAllowed, successResponse{Success: false, Message: "method not allowed"})
		return false
	}
	return true
}

// RegisterRoutes registers all HTTP routes on the provided mux. store
// may be nil when Redis persistence is disabled.
func RegisterRoutes(mux *http.ServeMux, eng *bot.Engine, store *ConfigStore) {
	// REST: full bot snapshot
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		if !preflight(w, r, "GET") {
			return
		}
		writeJSON(w, http.StatusOK, eng.Status(statusPriceHistoryN, statusLogN))
	})

	startHandler := func(w http.ResponseWriter, r *http.Request) {
		if !preflight(w, r, "POST") {
			return
		}
		var req struct {
			Capital float64 `json:"capital"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, successResponse{Success: false, Message: "invalid JSON"})
			return
		}
		if err := eng.Start(req.Capital); err != nil {
			writeJSON(w, http.StatusBadRequest, successResponse{Success: false, Message: err.Error()})
			return
		}
		log.Printf("[api_gateway] bot started, capital=%.2f", req.Capital)
		writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "bot started"})
	}
	mux.HandleFunc("/api/start", startHandler)
	mux.HandleFunc("/api/bot/start", startHandler)

	stopHandler := func(w http.ResponseWriter, r *http.Request) {
		if !preflight(w, r, "POST") {
			return
		}
		eng.Stop()
		log.Printf("[api_gateway] bot stopped")
		writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "bot stopped"})
	}
	mux.HandleFunc("/api/stop", stopHandler)
	mux.HandleFunc("/api/bot/stop", stopHandler)

	// REST: partial config update
	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method == "GET" {
			writeJSON(w, http.StatusOK, configResponse{Success: true, Config: eng.Config()})
			return
		}
		if r.Method != "POST" {
			writeJSON(w, http.StatusMethodNotAllowed, successResponse{Success: false, Message: "method not allowed"})
			return
		}

		var upd model.ConfigUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			writeJSON(w, http.StatusBadRequest, successResponse{Success: false, Message: "invalid JSON"})
			return
		}
		cfg, err := eng.UpdateConfig(upd)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, successResponse{Success: false, Message: err.Error()})
			return
		}
		if store != nil {
			store.Save(cfg)
		}
		log.Printf("[api_gateway] config updated: mode=%s size=%.1f%%", cfg.Mode, cfg.PositionSizePct)
		writeJSON(w, http.StatusOK, configResponse{Success: true, Config: cfg})
	})

	// REST: clear trade ledger and statistics
	mux.HandleFunc("/api/reset", func(w http.ResponseWriter, r *http.Request) {
		if !preflight(w, r, "POST") {
			return
		}
		eng.Reset()
		log.Printf("[api_gateway] stats reset")
		writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "stats reset"})
	})

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		writeJSON(w, http.StatusOK, eng.Health())
	})
}
