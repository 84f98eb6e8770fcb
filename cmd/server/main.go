package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"khabar-verifier/internal/classifier"
	"khabar-verifier/internal/config"
	"khabar-verifier/internal/crawler"
	"khabar-verifier/internal/server"
	"khabar-verifier/pkg/logger"
)

func main() {
	cfg := config.Load()
	l := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer l.Sync()

	if err := cfg.Validate(); err != nil {
		l.Errorf("invalid config: %v", err)
		os.Exit(1)
	}

	client := crawler.NewHTTPClient(cfg.FetchTimeout, cfg.DialTimeout, cfg.MaxBodyBytes, cfg.UserAgent)
	cl := classifier.New(classifier.DefaultKeywords())
	s := server.New(l, client, cl, server.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		HandlerTimeout: cfg.HandlerTimeout,
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.HandlerTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		l.Infof("server listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			l.Errorf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	l.Infof("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	l.Infof("bye")
}
