package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"blazerider/internal/adapter/api"
	"blazerider/internal/adapter/api/handler"
	apimiddleware "blazerider/internal/adapter/api/middleware"
	"blazerider/internal/adapter/api/router"
	"blazerider/internal/adapter/repository"
	"blazerider/internal/infrastructure/firebase"
	"blazerider/internal/infrastructure/geo"
	"blazerider/internal/infrastructure/realtime"
	"blazerider/internal/infrastructure/scheduler"
	"blazerider/internal/infrastructure/storage"
	"blazerider/internal/infrastructure/websocket"
	"blazerider/internal/usecase"
	"blazerider/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption
	serviceAccountPath := ""

	// Try to get service account from environment variable (for production)
	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		// Fallback to file path (for local development)
		serviceAccountPath = os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}

		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}

		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	messagingClient, err := firebaseApp.Messaging(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Messaging: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, serviceAccountPath)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	redisClient, err := realtime.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)
	chatIndexRepo := repository.NewFirestoreChatIndexRepository(firestoreClient)
	postRepo := repository.NewFirestorePostRepository(firestoreClient)
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient)
	rideRepo := repository.NewFirestoreRideRepository(firestoreClient)
	presenceStore := realtime.NewRedisPresenceStore(redisClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseApiKey)
	fcmClient := firebase.NewFCMClient(messagingClient)
	geoClient := geo.NewClient(cfg.WeatherApiURL, cfg.WeatherApiKey, cfg.GeocodeApiURL, cfg.GeocodeApiKey)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	jobScheduler := scheduler.New()
	defer jobScheduler.Stop()

	inactiveThreshold := time.Duration(cfg.InactiveMinutes) * time.Minute

	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, userRepo, wsManager, fcmClient)
	authUseCase := usecase.NewAuthUseCase(firebaseAuthClient, userRepo)
	userUseCase := usecase.NewUserUseCase(userRepo)
	chatUseCase := usecase.NewChatUseCase(chatRepo, chatIndexRepo, userRepo, wsManager, notificationUseCase)
	presenceUseCase := usecase.NewPresenceUseCase(presenceStore, wsManager, inactiveThreshold)
	feedUseCase := usecase.NewFeedUseCase(postRepo, userRepo, notificationUseCase, jobScheduler)
	rideUseCase := usecase.NewRideUseCase(rideRepo, userRepo, notificationUseCase, jobScheduler, geoClient, geoClient)
	adminUseCase := usecase.NewAdminUseCase(userRepo, notificationUseCase)

	// Socket events flow into the usecases, and disconnects clear any
	// typing flags left behind.
	wsManager.SetChatEvents(chatUseCase)
	wsManager.SetPresenceEvents(presenceUseCase)
	wsManager.OnDisconnect = chatUseCase.ClearTypingOnDisconnect

	// Re-arm deferred publish jobs lost on restart, and start the
	// presence sweep.
	feedUseCase.ReschedulePendingPublishes(ctx)
	rideUseCase.ReschedulePendingPublishes(ctx)
	presenceUseCase.StartInactivitySweeper(ctx, time.Minute)

	handler.Setup(
		authUseCase,
		userUseCase,
		chatUseCase,
		presenceUseCase,
		feedUseCase,
		rideUseCase,
		notificationUseCase,
		adminUseCase,
		storageClient,
		wsManager,
	)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userRepo)

	router.Setup(e, authMiddleware, adminMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
