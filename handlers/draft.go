package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"catalog-backend/cache"
	"catalog-backend/catalog"
	"catalog-backend/dtos"
	"catalog-backend/firebase"
	"catalog-backend/models"
	"catalog-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DraftHandler manages in-progress products. A draft accumulates field edits
// and asynchronously uploaded images until submit persists it as a product.
type DraftHandler struct {
	DB      *gorm.DB
	Drafts  *catalog.DraftStore
	Storage firebase.StorageClient
	Cache   ListCache
}

func (h *DraftHandler) CreateDraft(c *gin.Context) {
	draft := h.Drafts.CreateDraft()
	c.JSON(http.StatusCreated, gin.H{"draft_id": draft.ID})
}

func (h *DraftHandler) GetDraft(c *gin.Context) {
	draft, ok := h.lookupDraft(c)
	if !ok {
		return
	}

	title, description, price, categoryID := draft.Fields()
	c.JSON(http.StatusOK, gin.H{
		"draft_id":    draft.ID,
		"created_at":  draft.CreatedAt(),
		"title":       title,
		"description": description,
		"price":       price,
		"category_id": categoryID,
		"images":      draft.Images.Links(),
		"uploading":   !draft.Pipeline.Idle(),
		"outcomes":    draft.Pipeline.Outcomes(),
	})
}

func (h *DraftHandler) UpdateDraft(c *gin.Context) {
	draft, ok := h.lookupDraft(c)
	if !ok {
		return
	}

	var req dtos.DraftFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	// Field values are not validated here; the draft holds whatever partial
	// state the form is in. Submit enforces the real rules.
	price := decimal.Zero
	if req.Price != "" {
		parsed, err := decimal.NewFromString(req.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a decimal number"})
			return
		}
		price = parsed
	}

	var categoryID *uuid.UUID
	if req.CategoryID != nil && *req.CategoryID != "" {
		parsed, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
			return
		}
		categoryID = &parsed
	}

	draft.SetFields(req.Title, req.Description, price, categoryID)
	c.JSON(http.StatusOK, gin.H{"message": "Draft updated"})
}

// UploadImages accepts a multipart batch and hands it to the draft's pipeline.
// The response is 202: uploads continue in the background and the client polls
// the draft state (or checks outcomes at submit time) for results.
func (h *DraftHandler) UploadImages(c *gin.Context) {
	draft, ok := h.lookupDraft(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse form"})
		return
	}

	fileHeaders := form.File["images"]
	files := make([]catalog.UploadFile, 0, len(fileHeaders))
	for _, fileHeader := range fileHeaders {
		if err := utils.ValidateFileUpload(fileHeader); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image"})
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image"})
			return
		}

		files = append(files, catalog.UploadFile{
			Name:        fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	if err := draft.Pipeline.Enqueue(files); err != nil {
		var verr *catalog.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue uploads"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":        "Upload started",
		"files_accepted": len(files),
	})
}

func (h *DraftHandler) ReorderImages(c *gin.Context) {
	draft, ok := h.lookupDraft(c)
	if !ok {
		return
	}

	var req dtos.ImageOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if err := draft.Images.Reorder(req.Order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"images": draft.Images.Links()})
}

func (h *DraftHandler) DeleteImage(c *gin.Context) {
	draft, ok := h.lookupDraft(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image index"})
		return
	}

	removed, err := draft.Images.DeleteAt(index)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The same link can sit in the list more than once; only drop the blob
	// once the last occurrence is gone.
	remaining := draft.Images.Links()
	stillListed := false
	for _, link := range remaining {
		if link == removed {
			stillListed = true
			break
		}
	}
	if !stillListed {
		if objectPath, err := utils.ExtractObjectPath(removed); err == nil && objectPath != "" {
			if err := h.Storage.DeleteFile(c.Request.Context(), objectPath); err != nil {
				log.Printf("Failed to delete draft image %s from storage: %v", removed, err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"images": remaining})
}

// SubmitDraft waits for in-flight uploads, validates the draft, and persists
// the product with its images in display order. On any failure the draft
// survives so the operator can fix and resubmit.
func (h *DraftHandler) SubmitDraft(c *gin.Context) {
	draft, ok := h.lookupDraft(c)
	if !ok {
		return
	}

	if err := draft.Pipeline.Join(c.Request.Context()); err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Timed out waiting for uploads to finish"})
		return
	}

	if err := draft.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title, description, price, categoryID := draft.Fields()

	if categoryID != nil {
		if err := h.DB.First(&models.Category{}, "id = ?", *categoryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
	}

	product := models.Product{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Price:       price,
		CategoryID:  categoryID,
	}

	links := draft.Images.Links()
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		for i, link := range links {
			image := models.ProductImage{
				ID:        uuid.New(),
				ProductID: product.ID,
				ImageURL:  link,
				Position:  i,
			}
			if err := tx.Create(&image).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Failed to persist draft %s: %v", draft.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	h.Drafts.DeleteDraft(draft.ID)
	h.Cache.Invalidate(c.Request.Context(), cache.KeyProducts)

	h.DB.Preload("Category").Preload("Images", orderedImages).First(&product, product.ID)
	c.JSON(http.StatusCreated, product)
}

func (h *DraftHandler) lookupDraft(c *gin.Context) (*catalog.Draft, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draft ID"})
		return nil, false
	}

	draft, exists := h.Drafts.GetDraft(id)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found"})
		return nil, false
	}
	return draft, true
}
