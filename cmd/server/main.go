package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lifeline/config"
	"lifeline/internal/database"
	"lifeline/internal/router"
	"lifeline/internal/store"
)

func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	st := store.New(database.NewGormPersister(db), store.Options{
		Debounce:  time.Duration(cfg.Store.DebounceMs) * time.Millisecond,
		QueueSize: cfg.Store.WriteQueueSize,
	})
	snap, err := database.LoadSnapshot(db)
	if err != nil {
		log.Fatalf("warm start: %v", err)
	}
	st.ApplySnapshot(snap)
	log.Printf("[store] loaded %d donors, %d hospitals, %d requests",
		len(snap.Donors), len(snap.Hospitals), len(snap.Requests))

	engine := router.Setup(cfg, st)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	// Drain pending durable writes before exit.
	st.Close()
	fmt.Println("server stopped")
}
