package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"seventyFiveAPI/middleware"
	"seventyFiveAPI/services"
)

// maxPhotoBytes caps check-in photo uploads at 10 MB.
const maxPhotoBytes = 10 << 20

type UploadHandler struct {
	uploadService *services.UploadService
}

func NewUploadHandler(uploadService *services.UploadService) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
	}
}

// UploadCheckInPhoto accepts a multipart "photo" field and returns the
// hosted image URL for the client to attach to its daily entry.
func (h *UploadHandler) UploadCheckInPhoto(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Form field 'photo' is required")
		return
	}
	defer file.Close()

	url, err := h.uploadService.UploadCheckInPhoto(ctx, file, clerkID)
	if err != nil {
		log.Printf("UploadCheckInPhoto Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to upload photo")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"image_url": url})
}
