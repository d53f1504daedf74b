package main

import (
	"context"
	"log"

	"mini-shop-be/internal/bootstrap"
	"mini-shop-be/internal/config"
	"mini-shop-be/internal/server"
	"mini-shop-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)

	// 3. Start Background Services
	if err := container.EmitterService.Consume(context.Background()); err != nil {
		log.Printf("Background Emitter Error: %v", err)
	}

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run Server
	log.Fatal(srv.Run())
}
