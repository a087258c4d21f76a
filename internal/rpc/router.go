// Package rpc serves the household services as Connect unary procedures.
package rpc

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/roommates/internal/auth"
	"github.com/mmynk/roommates/internal/metrics"
	"github.com/mmynk/roommates/internal/middleware"
	"github.com/mmynk/roommates/internal/service"
)

// Services are the backends the router exposes.
type Services struct {
	Users      *service.UserService
	Households *service.HouseholdService
	Tasks      *service.TaskService
	Bills      *service.BillService
}

// RouterConfig wires the router's dependencies.
type RouterConfig struct {
	Services Services
	JWT      *auth.JWTManager
	Metrics  *metrics.Metrics

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// CORSOrigin is echoed in Access-Control-Allow-Origin. Defaults to "*".
	CORSOrigin string

	Logger *slog.Logger
}

// NewRouter mounts every procedure plus /healthz and /metrics.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(corsMiddleware(cfg.CORSOrigin))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	logging := middleware.LoggingInterceptor(logger, cfg.Metrics)
	public := []connect.HandlerOption{
		connect.WithCodec(Codec()),
		connect.WithInterceptors(logging),
	}
	// Auth runs first so the logging interceptor sees the caller.
	private := []connect.HandlerOption{
		connect.WithCodec(Codec()),
		connect.WithInterceptors(middleware.RequireAuth(cfg.JWT), logging),
	}

	users := NewUserHandler(cfg.Services.Users)
	unary(r, RegisterProcedure, users.Register, public...)
	unary(r, LoginProcedure, users.Login, public...)
	unary(r, MeProcedure, users.Me, private...)
	unary(r, UpdateUserProcedure, users.UpdateUser, private...)
	unary(r, DeleteUserProcedure, users.DeleteUser, private...)

	households := NewHouseholdHandler(cfg.Services.Households)
	unary(r, CreateHouseholdProcedure, households.CreateHousehold, private...)
	unary(r, UpdateHouseholdProcedure, households.UpdateHousehold, private...)
	unary(r, DeleteHouseholdProcedure, households.DeleteHousehold, private...)
	unary(r, HomepageProcedure, households.Homepage, private...)

	tasks := NewTaskHandler(cfg.Services.Tasks)
	unary(r, CreateTaskProcedure, tasks.CreateTask, private...)
	unary(r, UpdateTaskProcedure, tasks.UpdateTask, private...)
	unary(r, CompleteTaskProcedure, tasks.CompleteTask, private...)
	unary(r, MarkTaskIncompleteProcedure, tasks.MarkTaskIncomplete, private...)
	unary(r, DeleteTaskProcedure, tasks.DeleteTask, private...)
	unary(r, AddRotationMembersProcedure, tasks.AddRotationMembers, private...)
	unary(r, RemoveRotationMembersProcedure, tasks.RemoveRotationMembers, private...)
	unary(r, ListTasksProcedure, tasks.ListTasks, private...)
	unary(r, ListCompletedTasksProcedure, tasks.ListCompletedTasks, private...)

	bills := NewBillHandler(cfg.Services.Bills)
	unary(r, CreateBillProcedure, bills.CreateBill, private...)
	unary(r, UpdateBillProcedure, bills.UpdateBill, private...)
	unary(r, DeleteBillProcedure, bills.DeleteBill, private...)
	unary(r, AddParticipantsProcedure, bills.AddParticipants, private...)
	unary(r, RemoveParticipantsProcedure, bills.RemoveParticipants, private...)
	unary(r, ActivateBillProcedure, bills.ActivateBill, private...)
	unary(r, DeactivateBillProcedure, bills.DeactivateBill, private...)
	unary(r, PayCycleProcedure, bills.PayCycle, private...)
	unary(r, ListBillsProcedure, bills.ListBills, private...)
	unary(r, ListBillCyclesProcedure, bills.ListBillCycles, private...)
	unary(r, ListPaidCyclesProcedure, bills.ListPaidCycles, private...)
	unary(r, BalancesProcedure, bills.Balances, private...)

	return r
}

func unary[Req, Res any](
	r chi.Router,
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts ...connect.HandlerOption,
) {
	r.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
			w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
