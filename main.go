package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"cinematch/api"
	"cinematch/config"
	"cinematch/handlers"
	"cinematch/internal/database"
	"cinematch/services/accounts"
	"cinematch/services/collections"
	"cinematch/services/images"
	"cinematch/services/library"
	"cinematch/services/omdb"
	"cinematch/services/recommend"
	"cinematch/services/sessions"
	"cinematch/services/settings"
	"cinematch/utils"
)

func main() {
	cfg := config.Load()

	if cfg.LogFile != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	}

	log.Printf("[main] starting cinematch on %s (data dir %s)", cfg.ListenAddr, cfg.DataDir)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("[main] failed to create data dir: %v", err)
	}

	db, err := database.NewDB(database.Config{DatabasePath: cfg.DatabasePath})
	if err != nil {
		log.Fatalf("[main] failed to open database: %v", err)
	}
	defer db.Close()

	accountsSvc, err := accounts.NewService(cfg.DataDir)
	if err != nil {
		log.Fatalf("[main] failed to init accounts: %v", err)
	}

	sessionsSvc, err := sessions.NewService(cfg.DataDir, sessions.DefaultSessionDuration)
	if err != nil {
		log.Fatalf("[main] failed to init sessions: %v", err)
	}

	settingsSvc, err := settings.NewService(cfg.DataDir, cfg.GroqAPIKey)
	if err != nil {
		log.Fatalf("[main] failed to init settings: %v", err)
	}

	librarySvc, err := library.NewService(cfg.DataDir)
	if err != nil {
		log.Fatalf("[main] failed to init library: %v", err)
	}

	imageCache, err := images.NewCache(cfg.DataDir, cfg.ImageSearchURL, nil)
	if err != nil {
		log.Fatalf("[main] failed to init image cache: %v", err)
	}

	recommendSvc := recommend.NewService(librarySvc, settingsSvc, recommend.Options{})
	omdbClient := omdb.NewClient(cfg.OMDBProxyURL, nil)
	collectionsSvc := collections.NewService(db.Collections, accountsSvc)

	authHandler := handlers.NewAuthHandler(accountsSvc, sessionsSvc)
	libraryHandler := handlers.NewLibraryHandler(librarySvc)
	discoverHandler := handlers.NewDiscoverHandler(recommendSvc, omdbClient, imageCache)
	imagesHandler := handlers.NewImagesHandler(imageCache)
	collectionsHandler := handlers.NewCollectionsHandler(collectionsSvc)
	settingsHandler := handlers.NewSettingsHandler(settingsSvc)

	router := utils.NewRouter()

	// Login is rate limited to 5 attempts per minute per IP
	loginLimiter := api.NewIPRateLimiter(rate.Every(12*time.Second), 5)
	router.HandleFunc("/api/auth/signup", authHandler.Register).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/auth/login", api.RateLimitHandlerFunc(loginLimiter, authHandler.Login)).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/auth/logout", authHandler.Logout).Methods(http.MethodPost, http.MethodOptions)

	// Public browse surface
	router.HandleFunc("/api/collections/public", collectionsHandler.ListPublic).Methods(http.MethodGet, http.MethodOptions)

	// Authenticated surface
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(api.AccountAuthMiddleware(sessionsSvc))

	protected.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/auth/password", authHandler.ChangePassword).Methods(http.MethodPut, http.MethodOptions)
	protected.HandleFunc("/auth/logout-all", authHandler.LogoutAll).Methods(http.MethodPost, http.MethodOptions)

	protected.HandleFunc("/library/exclusions", libraryHandler.Exclusions).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/library/permission", libraryHandler.GetStoragePermission).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/library/permission", libraryHandler.SetStoragePermission).Methods(http.MethodPut, http.MethodOptions)
	protected.HandleFunc("/library/{kind}", libraryHandler.List).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/library/{kind}", libraryHandler.Add).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/library/{kind}/contains", libraryHandler.Contains).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/library/{kind}/{id}", libraryHandler.Remove).Methods(http.MethodDelete, http.MethodOptions)

	protected.HandleFunc("/discover", discoverHandler.Recommendations).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/chat", discoverHandler.Chat).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/movies/search", discoverHandler.MovieLookup).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/movies/recommendations", discoverHandler.SimilarMovies).Methods(http.MethodPost, http.MethodOptions)

	protected.HandleFunc("/images/resolve", imagesHandler.Resolve).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/images/preload", imagesHandler.Preload).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/images/cache/stats", imagesHandler.Stats).Methods(http.MethodGet, http.MethodOptions)

	protected.HandleFunc("/collections", collectionsHandler.Create).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/collections", collectionsHandler.ListMine).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/collections/{id}", collectionsHandler.Get).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/collections/{id}", collectionsHandler.Update).Methods(http.MethodPut, http.MethodOptions)
	protected.HandleFunc("/collections/{id}", collectionsHandler.Delete).Methods(http.MethodDelete, http.MethodOptions)
	protected.HandleFunc("/collections/{id}/can-edit", collectionsHandler.CanEdit).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/collections/{id}/movies", collectionsHandler.Movies).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/collections/{id}/movies", collectionsHandler.AddMovie).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/collections/movies/{movieID}", collectionsHandler.RemoveMovie).Methods(http.MethodDelete, http.MethodOptions)

	// Master-only administration
	protected.HandleFunc("/accounts", api.RequireMaster(authHandler.ListAccounts)).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/accounts/master/password", api.RequireMaster(authHandler.ResetMasterPassword)).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/settings/credentials", api.RequireMaster(settingsHandler.GetCredentials)).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/settings/credentials", api.RequireMaster(settingsHandler.UpdateCredentials)).Methods(http.MethodPut, http.MethodOptions)
	protected.HandleFunc("/images/cache", api.RequireMaster(imagesHandler.Invalidate)).Methods(http.MethodDelete, http.MethodOptions)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()
	log.Printf("[main] listening on %s", cfg.ListenAddr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
}
