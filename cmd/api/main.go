package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"confero.org/internal/auth"
	"confero.org/internal/conference"
	"confero.org/internal/httpapi"
	"confero.org/internal/obs"
	"confero.org/internal/store/pg"
	"confero.org/internal/stream"
	"confero.org/internal/workflow"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	var (
		actorStore auth.ActorStore
		confStore  conference.Store
		db         *sql.DB
	)
	if dsn := os.Getenv("CONFERO_PG_DSN"); dsn != "" {
		store, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		actorStore = store
		confStore = store
		db = store.DB()
	} else {
		log.Println("CONFERO_PG_DSN not set, using in-memory stores")
		actorStore = auth.NewInMemory()
		confStore = conference.NewInMemory()
	}

	authSvc, err := auth.NewService(actorStore)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	confSvc, err := conference.NewService(confStore)
	if err != nil {
		log.Fatalf("conference service: %v", err)
	}

	decisions := stream.New()
	engine, err := workflow.NewEngine(confStore, confStore, workflow.WithNotifier(decisions))
	if err != nil {
		log.Fatalf("workflow engine: %v", err)
	}

	bootstrapAdmin(authSvc)

	api := httpapi.New(httpapi.Config{
		ReadyProbe:  httpapi.ReadyProbe{DB: db},
		Version:     version,
		Auth:        authSvc,
		Conferences: confSvc,
		Engine:      engine,
		Stream:      decisions,
	})

	addr := os.Getenv("CONFERO_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting confero-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}

// bootstrapAdmin creates the initial super admin when the credentials are
// provided and the account does not exist yet.
func bootstrapAdmin(svc *auth.Service) {
	email := os.Getenv("CONFERO_ADMIN_EMAIL")
	password := os.Getenv("CONFERO_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := svc.Register(ctx, email, password, auth.RoleSuperAdmin, true); err != nil {
		if errors.Is(err, auth.ErrAlreadyExists) {
			return
		}
		log.Fatalf("bootstrap admin: %v", err)
	}
	log.Printf("bootstrapped super admin %s", email)
}
