// Package api provides the HTTP and WebSocket server.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/vega-desktop/analytics-backend/internal/advisor"
	"github.com/vega-desktop/analytics-backend/internal/analytics"
	"github.com/vega-desktop/analytics-backend/internal/benchmark"
	"github.com/vega-desktop/analytics-backend/internal/marketdata"
	"github.com/vega-desktop/analytics-backend/internal/optimization"
	"github.com/vega-desktop/analytics-backend/internal/volatility"
	"github.com/vega-desktop/analytics-backend/pkg/types"
	"github.com/vega-desktop/analytics-backend/pkg/utils"
)

// Server is the HTTP/WebSocket API server.
type Server struct {
	mu         sync.RWMutex
	logger     *zap.Logger
	config     *types.ServerConfig
	router     *mux.Router
	httpServer *http.Server
	upgrader   websocket.Upgrader
	clients    map[string]*Client

	store      *marketdata.Store
	simulator  marketdata.Simulator
	risk       *analytics.Engine
	regression *benchmark.RegressionEngine
	synthetic  *benchmark.SyntheticGenerator
	estimator  *volatility.Estimator
	advisor    *advisor.Advisor
	optimizer  *optimization.Optimizer
	jobs       map[string]*OptimizationJob
}

// OptimizationJob tracks a running or finished grid-search job.
type OptimizationJob struct {
	ID       string                    `json:"id"`
	Status   string                    `json:"status"`
	Started  time.Time                 `json:"started"`
	Progress *types.OptimizerProgress  `json:"progress,omitempty"`
	Results  []types.OptimizerResult   `json:"results,omitempty"`
	Error    string                    `json:"error,omitempty"`
	Request  types.OptimizationRequest `json:"-"`
}

// Deps are the collaborators the server exposes over HTTP.
type Deps struct {
	Store     *marketdata.Store
	Simulator marketdata.Simulator
	Advisor   *advisor.Advisor
	Optimizer *optimization.Optimizer
	Estimator *volatility.Estimator
}

// NewServer creates a new API server.
func NewServer(logger *zap.Logger, config *types.ServerConfig, deps Deps) *Server {
	server := &Server{
		logger:     logger,
		config:     config,
		router:     mux.NewRouter(),
		clients:    make(map[string]*Client),
		store:      deps.Store,
		simulator:  deps.Simulator,
		risk:       analytics.NewEngine(logger),
		regression: benchmark.NewRegressionEngine(logger),
		synthetic:  benchmark.NewSyntheticGenerator(logger),
		estimator:  deps.Estimator,
		advisor:    deps.Advisor,
		optimizer:  deps.Optimizer,
		jobs:       make(map[string]*OptimizationJob),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Desktop app talks to localhost only
			},
		},
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures HTTP routes.
func (s *Server) setupRoutes() {
	// Health check
	s.router.HandleFunc("/api/v1/health", s.handleHealth).Methods("GET")

	// Data endpoints
	s.router.HandleFunc("/api/v1/data/symbols", s.handleGetSymbols).Methods("GET")
	s.router.HandleFunc("/api/v1/data/history/{symbol}", s.handleGetHistory).Methods("GET")

	// Analytics endpoints
	s.router.HandleFunc("/api/v1/analysis/risk", s.handleRiskAnalysis).Methods("POST")
	s.router.HandleFunc("/api/v1/analysis/benchmark", s.handleBenchmark).Methods("POST")
	s.router.HandleFunc("/api/v1/volatility/{symbol}", s.handleVolatility).Methods("GET")
	s.router.HandleFunc("/api/v1/advisor/{symbol}", s.handleAdvisor).Methods("GET")

	// Simulation and optimization
	s.router.HandleFunc("/api/v1/simulate", s.handleSimulate).Methods("POST")
	s.router.HandleFunc("/api/v1/optimize/run", s.handleRunOptimization).Methods("POST")
	s.router.HandleFunc("/api/v1/optimize/{id}", s.handleGetOptimization).Methods("GET")

	// WebSocket
	s.router.HandleFunc(s.config.WebSocketPath, s.handleWebSocket)
}

// Router exposes the configured handler, mostly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.router)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting API server", zap.String("addr", addr))

	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	for _, client := range s.clients {
		client.Conn.Close()
	}
	s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// handleGetSymbols returns symbols with stored history.
func (s *Server) handleGetSymbols(w http.ResponseWriter, r *http.Request) {
	symbols := s.store.AvailableSymbols()

	if len(symbols) == 0 {
		symbols = []string{"SPY", "QQQ", "IWM"}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"symbols": symbols,
	})
}

// handleGetHistory returns daily bars for a symbol.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := utils.FormatSymbol(vars["symbol"])

	end := time.Now()
	start := end.AddDate(-1, 0, 0)

	if v := r.URL.Query().Get("start"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			start = t
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			end = t
		}
	}

	bars, err := s.store.GetHistoricalBars(r.Context(), symbol, start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"symbol": symbol,
		"bars":   bars,
		"count":  len(bars),
	})
}

// handleRiskAnalysis computes risk metrics over a posted equity curve.
func (s *Server) handleRiskAnalysis(w http.ResponseWriter, r *http.Request) {
	var req types.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.EquityCurve) == 0 {
		http.Error(w, "Equity curve is required", http.StatusBadRequest)
		return
	}

	returns := analytics.DailyReturns(req.EquityCurve)
	metrics := s.risk.Compute(returns, req.Trades)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"metrics":     metrics,
		"returnCount": len(returns),
	})
}

// handleBenchmark compares a posted equity curve against a benchmark
// curve, generating a synthetic benchmark when none is supplied.
func (s *Server) handleBenchmark(w http.ResponseWriter, r *http.Request) {
	var req types.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.EquityCurve) == 0 {
		http.Error(w, "Equity curve is required", http.StatusBadRequest)
		return
	}

	bench := req.Benchmark
	syntheticUsed := false
	if len(bench) == 0 {
		first := req.EquityCurve[0]
		last := req.EquityCurve[len(req.EquityCurve)-1]
		bench = s.synthetic.Generate(types.SyntheticConfig{
			StartDate:    first.Date,
			EndDate:      last.Date,
			InitialValue: first.Equity,
			Seed:         req.Seed,
		})
		syntheticUsed = true
	}

	metrics := s.regression.Compare(req.EquityCurve, bench)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"metrics":   metrics,
		"synthetic": syntheticUsed,
	})
}

// handleVolatility returns the IV metrics estimate for a symbol.
func (s *Server) handleVolatility(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := utils.FormatSymbol(vars["symbol"])

	asOf := time.Now()
	if v := r.URL.Query().Get("asOf"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			asOf = t
		}
	}

	metrics := s.estimator.Estimate(r.Context(), symbol, asOf)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"symbol": symbol,
		"asOf":   asOf.Format("2006-01-02"),
		"iv":     metrics,
	})
}

// handleAdvisor runs the full regime/opportunity pipeline for a symbol.
func (s *Server) handleAdvisor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := vars["symbol"]

	asOf := time.Now()
	if v := r.URL.Query().Get("asOf"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			asOf = t
		}
	}

	report, err := s.advisor.Analyze(r.Context(), symbol, asOf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(report)
}

// handleSimulate runs a single simulation and returns its summary.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req types.SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	summary, err := s.simulator.RunSimulation(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	json.NewEncoder(w).Encode(summary)
}

// handleRunOptimization starts a grid-search job in the background.
func (s *Server) handleRunOptimization(w http.ResponseWriter, r *http.Request) {
	var req types.OptimizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Base.Ticker == "" || req.Base.Strategy == "" {
		http.Error(w, "Base ticker and strategy are required", http.StatusBadRequest)
		return
	}

	job := &OptimizationJob{
		ID:      utils.GenerateJobID(),
		Status:  "running",
		Started: time.Now(),
		Request: req,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	go s.runOptimizationAsync(job)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":      job.ID,
		"status":  job.Status,
		"started": job.Started.Unix(),
	})
}

// handleGetOptimization returns job status, progress and results.
func (s *Server) handleGetOptimization(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(job)
}

// runOptimizationAsync executes a grid-search job, broadcasting
// progress and completion events over WebSocket.
func (s *Server) runOptimizationAsync(job *OptimizationJob) {
	results, err := s.optimizer.Optimize(context.Background(), job.ID, job.Request, func(p types.OptimizerProgress) {
		s.mu.Lock()
		job.Progress = &p
		s.mu.Unlock()

		s.broadcastToSubscribers("optimize:"+job.ID, &Message{
			Type:      "event",
			Method:    "optimize:progress",
			Payload:   p,
			Timestamp: time.Now().UnixMilli(),
		})
	})

	s.mu.Lock()
	if err != nil {
		job.Status = "failed"
		job.Error = err.Error()
		s.logger.Error("Optimization failed", zap.String("id", job.ID), zap.Error(err))
	} else {
		job.Status = "completed"
		job.Results = results
	}
	status := job.Status
	s.mu.Unlock()

	s.broadcast(&Message{
		Type:      "event",
		Method:    "optimize:complete",
		Payload:   map[string]interface{}{"id": job.ID, "status": status},
		Timestamp: time.Now().UnixMilli(),
	})
}
