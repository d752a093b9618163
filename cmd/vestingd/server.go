package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Anya-org/Anya-core-sub010/vesting"
)

// txRunner is the store-side contract: one handler runs inside one
// transaction, discarded when the engine call fails.
type txRunner interface {
	RunTx(caller string, tick uint64, fn func(vesting.TransactionContextInterface) error) error
	RunView(caller string, tick uint64, fn func(vesting.TransactionContextInterface) error) error
}

type Server struct {
	router *chi.Mux
	store  txRunner
	engine *vesting.Engine
	clock  clockwork.Clock
	admins map[string]string // api key -> administrator id
	log    *slog.Logger
	srv    *http.Server
}

func NewServer(listenAddr string, store txRunner, engine *vesting.Engine, clock clockwork.Clock, admins []AdminConfig, log *slog.Logger) *Server {
	keys := make(map[string]string, len(admins))
	for _, admin := range admins {
		keys[admin.APIKey] = admin.ID
	}

	s := &Server{
		router: chi.NewRouter(),
		store:  store,
		engine: engine,
		clock:  clock,
		admins: keys,
		log:    log,
	}

	s.setupRoutes()

	s.srv = &http.Server{
		Addr:         listenAddr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/summary", s.handleGetSummary)
		r.Get("/allocations/{id}", s.handleGetAllocation)
		r.Get("/allocations/{id}/vested", s.handleCalculateVested)
		r.Get("/members/{id}", s.handleGetMember)

		r.Group(func(r chi.Router) {
			r.Use(s.adminAuth)
			r.Post("/initialize", s.handleInitialize)
			r.Post("/allocations/{id}/process", s.handleProcessAllocation)
			r.Post("/process-all", s.handleProcessAll)
			r.Post("/members", s.handleRegisterMember)
			r.Post("/members/{id}/milestones", s.handleAddMilestone)
			r.Post("/members/{id}/process", s.handleProcessMember)
		})
	})
}

func (s *Server) Start() error {
	s.log.Info("vestingd listening", "addr", s.srv.Addr)
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type callerKeyType struct{}

var callerKey callerKeyType

// adminAuth resolves the administrator identity from the X-API-Key header
// and stamps each mutating request with an audit id.
func (s *Server) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := s.admins[r.Header.Get("X-API-Key")]
		if !ok {
			writeError(w, vesting.NewCustomError(http.StatusUnauthorized, "unknown api key", vesting.ErrUnauthorized))
			return
		}

		s.log.Info("admin request",
			"audit", uuid.NewString(),
			"caller", caller,
			"method", r.Method,
			"path", r.URL.Path,
		)

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, caller)))
	})
}

func callerFrom(r *http.Request) string {
	caller, _ := r.Context().Value(callerKey).(string)
	return caller
}

func (s *Server) tick() uint64 {
	return uint64(s.clock.Now().Unix())
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	err := s.store.RunTx(callerFrom(r), s.tick(), func(ctx vesting.TransactionContextInterface) error {
		return s.engine.Initialize(ctx)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "initialized"})
}

func (s *Server) handleProcessAllocation(w http.ResponseWriter, r *http.Request) {
	var result *vesting.ReleaseResult
	err := s.store.RunTx(callerFrom(r), s.tick(), func(ctx vesting.TransactionContextInterface) error {
		var err error
		result, err = s.engine.ProcessAllocation(ctx, chi.URLParam(r, "id"))
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleProcessAll(w http.ResponseWriter, r *http.Request) {
	var results []*vesting.ReleaseResult
	err := s.store.RunTx(callerFrom(r), s.tick(), func(ctx vesting.TransactionContextInterface) error {
		var err error
		results, err = s.engine.ProcessAll(ctx)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

type registerMemberRequest struct {
	MemberID   string `json:"memberId"`
	Percentage uint64 `json:"percentage"`
}

func (s *Server) handleRegisterMember(w http.ResponseWriter, r *http.Request) {
	var req registerMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, vesting.NewCustomError(http.StatusBadRequest, "invalid request body", err))
		return
	}

	err := s.store.RunTx(callerFrom(r), s.tick(), func(ctx vesting.TransactionContextInterface) error {
		return s.engine.RegisterMember(ctx, req.MemberID, req.Percentage)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"memberId": req.MemberID})
}

type addMilestoneRequest struct {
	TriggerMonth uint64 `json:"triggerMonth"`
	Percentage   uint64 `json:"percentage"`
}

func (s *Server) handleAddMilestone(w http.ResponseWriter, r *http.Request) {
	var req addMilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, vesting.NewCustomError(http.StatusBadRequest, "invalid request body", err))
		return
	}

	memberID := chi.URLParam(r, "id")
	err := s.store.RunTx(callerFrom(r), s.tick(), func(ctx vesting.TransactionContextInterface) error {
		return s.engine.AddMilestone(ctx, memberID, req.TriggerMonth, req.Percentage)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"memberId": memberID})
}

func (s *Server) handleProcessMember(w http.ResponseWriter, r *http.Request) {
	var result *vesting.ReleaseResult
	err := s.store.RunTx(callerFrom(r), s.tick(), func(ctx vesting.TransactionContextInterface) error {
		var err error
		result, err = s.engine.ProcessMember(ctx, chi.URLParam(r, "id"))
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	var summary *vesting.Summary
	err := s.store.RunView("", s.tick(), func(ctx vesting.TransactionContextInterface) error {
		var err error
		summary, err = s.engine.GetSummary(ctx)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetAllocation(w http.ResponseWriter, r *http.Request) {
	var record *vesting.AllocationRecord
	err := s.store.RunView("", s.tick(), func(ctx vesting.TransactionContextInterface) error {
		var err error
		record, err = s.engine.GetAllocation(ctx, chi.URLParam(r, "id"))
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleCalculateVested(w http.ResponseWriter, r *http.Request) {
	var info *vesting.VestedInfo
	err := s.store.RunView("", s.tick(), func(ctx vesting.TransactionContextInterface) error {
		var err error
		info, err = s.engine.CalculateVested(ctx, chi.URLParam(r, "id"))
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	var record *vesting.MemberRecord
	err := s.store.RunView("", s.tick(), func(ctx vesting.TransactionContextInterface) error {
		var err error
		record, err = s.engine.GetMember(ctx, chi.URLParam(r, "id"))
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, vesting.StatusCode(err), map[string]string{"error": err.Error()})
}
