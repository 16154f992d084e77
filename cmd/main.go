package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KromaEnergia/api-crm/internal/auth"
	"github.com/KromaEnergia/api-crm/internal/config"
	"github.com/KromaEnergia/api-crm/internal/contact"
	"github.com/KromaEnergia/api-crm/internal/dashboard"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/models"
	"github.com/KromaEnergia/api-crm/internal/note"
	"github.com/KromaEnergia/api-crm/internal/notification"
	"github.com/KromaEnergia/api-crm/internal/seed"
	"github.com/KromaEnergia/api-crm/internal/users"
	dbutil "github.com/KromaEnergia/api-crm/internal/utils/db"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.App().WithError(err).Fatal("configuração inválida")
	}
	if err := logger.Init(cfg.Logger()); err != nil {
		logger.App().WithError(err).Fatal("erro ao iniciar logs")
	}
	log := logger.App()

	if err := auth.Init(auth.Options{
		PrivateKeyPath: cfg.JWTPrivateKeyPath,
		KeyID:          cfg.JWTKeyID,
		Issuer:         cfg.JWTIssuer,
		Audience:       cfg.JWTAudience,
		CookieSecure:   cfg.CookieSecure,
	}); err != nil {
		log.WithError(err).Fatal("erro ao carregar chave JWT")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := dbutil.GetDB(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("erro ao conectar no banco")
	}

	// AutoMigrate para todos os modelos
	if err := seed.Migrate(db); err != nil {
		log.WithError(err).Fatal("erro no AutoMigrate")
	}
	if err := seed.Run(db, seed.Options{
		ManagerEmail:    cfg.SeedManagerEmail,
		ManagerPassword: cfg.SeedManagerPassword,
	}); err != nil {
		log.WithError(err).Fatal("erro no seed")
	}

	router := newRouter(db, notification.New(cfg.AlertWebhookURL))

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Origins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", logger.RequestIDHeader},
		ExposedHeaders:   []string{logger.RequestIDHeader},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           c.Handler(logger.RequestLogger(router)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("erro ao encerrar servidor")
		}
	}()

	log.WithField("address", cfg.Address).Info("servidor rodando")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("servidor parou")
	}
}

func newRouter(db *gorm.DB, notifier notification.Notifier) *mux.Router {
	usersHandler := users.NewHandler(db)
	contactHandler := contact.NewHandler(db, notifier)
	noteHandler := note.NewHandler(db)
	dashboardHandler := dashboard.NewHandler(db)

	r := mux.NewRouter()

	// Rotas públicas de sessão
	r.HandleFunc("/auth/login", usersHandler.Login).Methods("POST")
	r.HandleFunc("/auth/refresh", usersHandler.Sessions.Refresh).Methods("POST")
	r.HandleFunc("/auth/logout", usersHandler.Sessions.Logout).Methods("POST")
	r.HandleFunc("/.well-known/jwks.json", auth.JWKSHandler).Methods("GET")

	api := r.NewRoute().Subrouter()
	api.Use(auth.Authenticate)

	managers := func(f http.HandlerFunc) http.Handler { return auth.RequireManager(f) }

	// Rotas de usuários
	api.Handle("/users", managers(usersHandler.Register)).Methods("POST")
	api.Handle("/users", managers(usersHandler.List)).Methods("GET")
	api.HandleFunc("/users/me", usersHandler.Me).Methods("GET")
	api.HandleFunc("/users/assignable", usersHandler.Assignable).Methods("GET")
	api.Handle("/users/{id:[0-9]+}/toggle-status", managers(usersHandler.ToggleStatus)).Methods("POST")
	api.Handle("/users/{id:[0-9]+}/role", managers(usersHandler.ChangeRole)).Methods("PUT")

	// Rotas de contatos
	api.HandleFunc("/contacts", contactHandler.Create).Methods("POST")
	api.HandleFunc("/contacts/form-options", contactHandler.FormOptions).Methods("GET")
	api.HandleFunc("/contacts/{view:leads|opportunities|customers|archive}", contactHandler.List).Methods("GET")
	api.HandleFunc("/contacts/{id:[0-9]+}", contactHandler.Get).Methods("GET")
	api.HandleFunc("/contacts/{id:[0-9]+}", contactHandler.Update).Methods("PUT")
	api.HandleFunc("/contacts/{id:[0-9]+}/status", contactHandler.ChangeStatus).Methods("POST")

	// Rotas de notas, tarefas e reuniões
	api.HandleFunc("/contacts/{id:[0-9]+}/notes", noteHandler.Create).Methods("POST")
	api.HandleFunc("/notes/form-options", noteHandler.FormOptions).Methods("GET")
	api.Handle("/notes/tasks", noteHandler.Items(models.KindTask, false)).Methods("GET")
	api.Handle("/notes/tasks/completed", noteHandler.Items(models.KindTask, true)).Methods("GET")
	api.Handle("/notes/meetings", noteHandler.Items(models.KindMeeting, false)).Methods("GET")
	api.Handle("/notes/meetings/completed", noteHandler.Items(models.KindMeeting, true)).Methods("GET")
	api.HandleFunc("/notes/{id:[0-9]+}/complete", noteHandler.Complete).Methods("POST")
	api.HandleFunc("/notes/{id:[0-9]+}/reopen", noteHandler.Reopen).Methods("POST")
	api.HandleFunc("/notes/{id:[0-9]+}", noteHandler.Delete).Methods("DELETE")

	// Painéis
	api.HandleFunc("/dashboard", dashboardHandler.Home).Methods("GET")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(auth.RequireManager)
	admin.HandleFunc("/dashboard", dashboardHandler.AdminDashboard).Methods("GET")
	admin.HandleFunc("/contacts", dashboardHandler.AdminContacts).Methods("GET")
	admin.HandleFunc("/tasks", dashboardHandler.AdminTasks).Methods("GET")

	return r
}
