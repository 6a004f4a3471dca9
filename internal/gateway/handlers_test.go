package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"paperbot/internal/bot"
	"paperbot/internal/model"
)

func testConfig() model.TradingConfig {
	return model.TradingConfig{
		Mode:             model.ModeAggressive,
		Capital:          100,
		PositionSizePct:  15,
		TakeProfitPct:    5,
		StopLossPct:      2,
		TrailingStartPct: 2,
		TrailingDeltaPct: 1.5,
		MinScorePct:      60,
		LongEnabled:      true,
		ShortEnabled:     true,
	}
}

func newTestServer(t *testing.T) (*bot.Engine, *httptest.Server) {
	t.Helper()
	eng := bot.New(testConfig(), bot.Options{})
	mux := http.NewServeMux()
	RegisterRoutes(mux, eng, nil)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return eng, srv
}

func TestStartRejectsZeroCapital(t *testing.T) {
	eng, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/start", "application/json", strings.NewReader(`{"capital":0}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var body successResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Success {
		t.Error("success = true, want false")
	}
	if body.Message != "Capital invalide" {
		t.Errorf("message = %q, want %q", body.Message, "Capital invalide")
	}
	if eng.Running() {
		t.Error("bot running after rejected start")
	}
}

func TestStartAndStop(t *testing.T) {
	eng, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/start", "application/json", strings.NewReader(`{"capital":250}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d, want 200", resp.StatusCode)
	}
	if !eng.Running() {
		t.Fatal("bot not running after start")
	}
	if got := eng.Config().Capital; got != 250 {
		t.Errorf("capital = %v, want 250", got)
	}

	resp, err = http.Post(srv.URL+"/api/stop", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stop status = %d, want 200", resp.StatusCode)
	}
	if eng.Running() {
		t.Error("bot still running after stop")
	}
}

func TestBotPathAliases(t *testing.T) {
	eng, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/bot/start", "application/json", strings.NewReader(`{"capital":100}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if !eng.Running() {
		t.Fatal("bot not running after /api/bot/start")
	}

	resp, err = http.Post(srv.URL+"/api/bot/stop", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if eng.Running() {
		t.Error("bot still running after /api/bot/stop")
	}
}

func TestConfigPartialUpdate(t *testing.T) {
	eng, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/config", "application/json",
		strings.NewReader(`{"take_profit":8,"min_score":75}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body configResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Config.TakeProfitPct != 8 {
		t.Errorf("take profit = %v, want 8", body.Config.TakeProfitPct)
	}
	if body.Config.MinScorePct != 75 {
		t.Errorf("min score = %v, want 75", body.Config.MinScorePct)
	}
	// Untouched fields keep their values.
	if body.Config.StopLossPct != 2 {
		t.Errorf("stop loss = %v, want 2", body.Config.StopLossPct)
	}
	if got := eng.Config().TakeProfitPct; got != 8 {
		t.Errorf("engine take profit = %v, want 8", got)
	}
}

func TestConfigRejectsInvalidMode(t *testing.T) {
	eng, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/config", "application/json",
		strings.NewReader(`{"mode":"yolo"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if got := eng.Config().Mode; got != model.ModeAggressive {
		t.Errorf("mode = %q, want unchanged %q", got, model.ModeAggressive)
	}
}

func TestResetClearsStats(t *testing.T) {
	eng, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/reset", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	st := eng.Status(0, 0)
	if st.Stats.TotalTrades != 0 || len(st.Trades) != 0 {
		t.Errorf("stats not cleared: %+v", st.Stats)
	}
}

func TestStatusSnapshot(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var st bot.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Running {
		t.Error("running = true for a fresh engine")
	}
	if st.Position != nil {
		t.Error("position non-nil for a fresh engine")
	}
	if st.Config.Mode != model.ModeAggressive {
		t.Errorf("mode = %q, want %q", st.Config.Mode, model.ModeAggressive)
	}
}

func TestHealth(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var h bot.Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "alive" {
		t.Errorf("status = %q, want %q", h.Status, "alive")
	}
	if h.Bot.Running {
		t.Error("running = true for a fresh engine")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/start")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}
