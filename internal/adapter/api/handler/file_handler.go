package handler

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"blazerider/internal/infrastructure/ratelimit"
	"blazerider/internal/infrastructure/storage"
	"blazerider/pkg/errors"
	"blazerider/pkg/logger"
	"blazerider/pkg/response"
)

type FileHandler struct {
	storageClient *storage.CloudStorageClient
	rateLimiter   *ratelimit.RateLimiter
	maxFileSize   int64
}

func NewFileHandler(storageClient *storage.CloudStorageClient) *FileHandler {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &FileHandler{
		storageClient: storageClient,
		rateLimiter:   rateLimiter,
		maxFileSize:   5 * 1024 * 1024,
	}
}

var allowedFolders = map[string]bool{
	"chat_files":     true,
	"profile_images": true,
	"post_images":    true,
	"group_images":   true,
}

func isAllowedFileType(fileType string) bool {
	switch fileType {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "application/pdf":
		return true
	}
	return false
}

// UploadFile accepts a multipart file and stores it under one of the fixed
// attachment namespaces. chat_files uploads are scoped per chat id.
func (h *FileHandler) UploadFile(c echo.Context) error {
	userID := c.Get("uid").(string)
	if allowed, waitTime := h.rateLimiter.Allow(userID, "upload_file"); !allowed {
		return response.Error(c, errors.TooManyRequests("Upload limit reached. Please wait before uploading again", waitTime))
	}

	file, err := c.FormFile("file")
	if err != nil {
		logger.Error("Error getting file from form: %v", err)
		return response.Error(c, errors.BadRequest("Missing or invalid file", err))
	}

	if file.Size > h.maxFileSize {
		logger.Warn("File too large: %d bytes (max: %d)", file.Size, h.maxFileSize)
		return response.Error(c, errors.BadRequest(fmt.Sprintf("File size exceeds maximum allowed (%dMB)", h.maxFileSize/(1024*1024)), nil))
	}

	fileType := file.Header.Get("Content-Type")
	if !isAllowedFileType(fileType) {
		logger.Warn("Invalid file type: %s", fileType)
		return response.Error(c, errors.BadRequest("File type not supported", nil))
	}

	folder := c.FormValue("folder")
	if !allowedFolders[folder] {
		return response.Error(c, errors.BadRequest("Unknown upload folder", nil))
	}
	if folder == "chat_files" {
		chatID := c.FormValue("chat_id")
		if chatID == "" || strings.ContainsAny(chatID, "/\\") {
			return response.Error(c, errors.BadRequest("chat_id is required for chat uploads", nil))
		}
		folder = folder + "/" + chatID
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to open uploaded file", err))
	}
	defer src.Close()

	url, err := h.storageClient.UploadFile(c.Request().Context(), src, fileType, folder)
	if err != nil {
		logger.Error("Upload failed: %v", err)
		return response.Error(c, errors.Internal("Failed to store file", err))
	}

	return response.Created(c, map[string]string{"url": url})
}

type deleteFileRequest struct {
	URL string `json:"url" validate:"required,url"`
}

func (h *FileHandler) DeleteFile(c echo.Context) error {
	var req deleteFileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.storageClient.DeleteFile(c.Request().Context(), req.URL); err != nil {
		return response.Error(c, errors.Internal("Failed to delete file", err))
	}

	return response.Success(c, map[string]string{"status": "deleted"})
}
