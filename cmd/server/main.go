package main

import (
	"context"
	"geodistance-service/internal/api"
	"geodistance-service/internal/app"
	"geodistance-service/internal/config"
	"log"
	"net/http"
	"time"
)

// main is the application composition root.
// It loads configuration, wires adapters behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	a, err := app.New(context.Background(), cfg, app.Options{})
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	router := api.NewRouter(a.Service, a.Cache, cfg.DefaultEllipsoid)

	// Write timeout covers two geocoding calls on a cold cache.
	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      2*cfg.HTTPTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		a.Close()
		log.Fatal(err)
	}
}
