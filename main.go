package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"ripple/db"
	"ripple/middleware"
	"ripple/posts"
	"ripple/rdx"
	"ripple/routes"
	"ripple/users"
)

func setupRouter(userHandler *users.Handler, postHandler *posts.Handler) *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", routes.Index)

	routes.AddUserRoutes(router, userHandler)
	routes.AddPostRoutes(router, postHandler)

	return router
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	port := envOr("PORT", "8080")
	if port[0] != ':' {
		port = ":" + port
	}

	// connect to MongoDB before serving anything
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer connectCancel()

	database, err := db.Connect(connectCtx,
		envOr("MONGO_URI", "mongodb://localhost:27017"),
		envOr("MONGO_DB", "social-media-app"),
	)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	// cache is optional; nil when REDIS_ADDR is unset
	cache := rdx.New(os.Getenv("REDIS_ADDR"))

	userStore := users.NewMongoStore(database)
	postStore := posts.NewMongoStore(database)

	userHandler := users.NewHandler(userStore, cache)
	postHandler := posts.NewHandler(postStore, userStore, cache)

	router := setupRouter(userHandler, postHandler)

	// apply middleware: CORS → security headers → logging → request ID → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := middleware.RequestID(middleware.Logging(middleware.SecurityHeaders(corsHandler)))

	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	// wait for interrupt or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutdown signal received; shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Graceful shutdown failed: %v", err)
	}

	if err := cache.Close(); err != nil {
		log.Printf("Redis close error: %v", err)
	}
	if err := database.Close(ctx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}

	log.Println("Server stopped cleanly")
}
