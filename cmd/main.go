package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/earnings-tracker/api/internal/auth"
	"github.com/earnings-tracker/api/internal/report"
	"github.com/earnings-tracker/api/internal/source"
	"github.com/earnings-tracker/api/internal/user"
	utilsdb "github.com/earnings-tracker/api/internal/utils/db"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	_ = godotenv.Load()

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	db, err := utilsdb.GetDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get database handle:", err)
	}
	defer sqlDB.Close()

	if err := db.AutoMigrate(
		&user.User{},
		&auth.Session{},
		&report.Report{},
		&source.Source{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Handlers
	userHandler := user.NewHandler(db)
	authHandler := auth.NewHandler(db)
	reportHandler := report.NewHandler(db)

	// Router
	r := mux.NewRouter()

	// Public auth routes
	r.HandleFunc("/auth/register", userHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Everything below requires a valid session
	protected := r.NewRoute().Subrouter()
	protected.Use(auth.Middleware(authHandler.Sessions))

	protected.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	protected.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	protected.HandleFunc("/calculate", reportHandler.Calculate).Methods("POST")

	protected.HandleFunc("/reports", reportHandler.Create).Methods("POST")
	protected.HandleFunc("/reports", reportHandler.List).Methods("GET")
	protected.HandleFunc("/reports/{id}", reportHandler.GetByID).Methods("GET")
	protected.HandleFunc("/reports/{id}", reportHandler.Update).Methods("PUT")
	protected.HandleFunc("/reports/{id}", reportHandler.Delete).Methods("DELETE")

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}).Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Println("Server running on http://localhost:" + port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
