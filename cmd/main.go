// jobmate-board-service
//
// Job board: employers post jobs, job seekers search and apply, and employers
// move each application through its review workflow.
// Serves the site over HTTP and dashboard counters over gRPC for the Gateway.
// Publishes EVENT_APPLICATION_SUBMITTED / EVENT_APPLICATION_STATUS_CHANGED to
// Redis and a cron-driven EVENT_PENDING_DIGEST per employer.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"jobmate/board-service/internal/config"
	"jobmate/board-service/internal/db"
	"jobmate/board-service/internal/events"
	"jobmate/board-service/internal/grpcserver"
	"jobmate/board-service/internal/identity"
	"jobmate/board-service/internal/jobs"
	"jobmate/board-service/internal/resume"
	"jobmate/board-service/internal/scheduler"
	"jobmate/board-service/internal/store/memstore"
	"jobmate/board-service/internal/store/postgres"
	"jobmate/board-service/internal/web"
	"jobmate/board-service/internal/workflow"
)

// store is everything the services need from persistence.
type store interface {
	identity.Store
	workflow.Store
	jobs.Store
	scheduler.EmployerLister
}

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[board-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Persistence, sessions and events ─────────────────────────────────────
	var (
		st       store
		sessions identity.Sessions
		pub      events.Publisher
		ping     func(context.Context) error
	)
	if cfg.InMemory() {
		log.Println("[board-service] DATABASE_URL=memory, using in-memory store (data is lost on exit)")
		st = memstore.New()
		sessions = memstore.NewSessions()
		pub = events.LogPublisher{}
	} else {
		log.Println("[board-service] Connecting to PostgreSQL…")
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, 30*time.Second)
		if err != nil {
			log.Fatalf("[board-service] PostgreSQL: %v", err)
		}
		defer pool.Close()
		pg := postgres.New(pool)
		if err := pg.Migrate(ctx); err != nil {
			log.Fatalf("[board-service] Migrate: %v", err)
		}
		st = pg
		ping = pg.Ping
		log.Println("[board-service] PostgreSQL connected ✓")

		log.Println("[board-service] Connecting to Redis…")
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, "board-service")
		if err != nil {
			log.Fatalf("[board-service] Redis: %v", err)
		}
		defer rdb.Close()
		sessions = identity.NewRedisSessions(rdb)
		pub = events.NewRedisPublisher(rdb)
		log.Println("[board-service] Redis connected ✓")
	}

	// ── Services ─────────────────────────────────────────────────────────────
	policy := workflow.Permissive
	if cfg.StrictTransitions {
		policy = workflow.Strict
	}
	engine := workflow.NewEngine(st, pub, policy)
	jobManager := jobs.NewManager(st, engine)
	ids := identity.NewService(st, sessions, cfg.SessionTTL)
	resumes := resume.NewStorage(cfg.ResumeDir, cfg.MaxResumeBytes)
	log.Printf("[board-service] Transition policy: %s", policy)

	// ── Scheduler ────────────────────────────────────────────────────────────
	sched := scheduler.New(st, engine, pub, cfg.DigestSchedule)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[board-service] Scheduler: %v", err)
	}

	// ── gRPC server ──────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatalf("[board-service] gRPC listen: %v", err)
	}
	gs := grpc.NewServer()
	hs := grpcserver.Register(gs, grpcserver.NewServer(ids, engine, jobManager))
	go func() {
		log.Printf("[board-service] gRPC listening on :%s", cfg.GRPCPort)
		if err := gs.Serve(lis); err != nil {
			log.Fatalf("[board-service] gRPC server error: %v", err)
		}
	}()

	// ── HTTP server ──────────────────────────────────────────────────────────
	h := web.NewHandler(ids, engine, jobManager, resumes, web.Options{
		SessionTTL:     cfg.SessionTTL,
		MaxResumeBytes: cfg.MaxResumeBytes,
		SecureCookies:  cfg.SecureCookies,
		Ping:           ping,
	})
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      h.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[board-service] listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[board-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[board-service] Shutting down…")
	hs.Shutdown()
	sched.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[board-service] Shutdown error: %v", err)
	}
	gs.GracefulStop()
	log.Println("[board-service] Stopped.")
}
