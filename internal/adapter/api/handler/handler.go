package handler

import (
	"blazerider/internal/infrastructure/storage"
	ws "blazerider/internal/infrastructure/websocket"
	"blazerider/internal/usecase"
)

var (
	authHandler         *AuthHandler
	userHandler         *UserHandler
	chatHandler         *ChatHandler
	presenceHandler     *PresenceHandler
	feedHandler         *FeedHandler
	rideHandler         *RideHandler
	notificationHandler *NotificationHandler
	adminHandler        *AdminHandler
	fileHandler         *FileHandler
	websocketHandler    *WebSocketHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	chatUseCase *usecase.ChatUseCase,
	presenceUseCase *usecase.PresenceUseCase,
	feedUseCase *usecase.FeedUseCase,
	rideUseCase *usecase.RideUseCase,
	notificationUseCase *usecase.NotificationUseCase,
	adminUseCase *usecase.AdminUseCase,
	storageClient *storage.CloudStorageClient,
	wsManager *ws.Manager,
) {
	authHandler = NewAuthHandler(authUseCase)
	userHandler = NewUserHandler(userUseCase)
	chatHandler = NewChatHandler(chatUseCase)
	presenceHandler = NewPresenceHandler(presenceUseCase)
	feedHandler = NewFeedHandler(feedUseCase)
	rideHandler = NewRideHandler(rideUseCase)
	notificationHandler = NewNotificationHandler(notificationUseCase)
	adminHandler = NewAdminHandler(adminUseCase)
	fileHandler = NewFileHandler(storageClient)
	websocketHandler = NewWebSocketHandler(wsManager, authUseCase, presenceUseCase)
}

func GetAuthHandler() *AuthHandler { return authHandler }

func GetUserHandler() *UserHandler { return userHandler }

func GetChatHandler() *ChatHandler { return chatHandler }

func GetPresenceHandler() *PresenceHandler { return presenceHandler }

func GetFeedHandler() *FeedHandler { return feedHandler }

func GetRideHandler() *RideHandler { return rideHandler }

func GetNotificationHandler() *NotificationHandler { return notificationHandler }

func GetAdminHandler() *AdminHandler { return adminHandler }

func GetFileHandler() *FileHandler { return fileHandler }

func GetWebSocketHandler() *WebSocketHandler { return websocketHandler }
