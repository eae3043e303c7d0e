package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"
	"time"

	"catalog-backend/cache"
	"catalog-backend/catalog"
	"catalog-backend/middleware"
	"catalog-backend/models"
	"catalog-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDB *gorm.DB

// noCache is the disabled cache, same as running without REDIS_URL.
var noCache ListCache = (*cache.ListCache)(nil)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")

	var err error
	testDB, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	// Limit to 1 open connection to prevent SQLite concurrent access issues
	// with in-memory databases. This ensures all goroutines (including the
	// upload pipeline workers) share the same connection and see the same tables.
	sqlDB, _ := testDB.DB()
	sqlDB.SetMaxOpenConns(1)

	// Create tables using raw SQLite-compatible SQL instead of AutoMigrate,
	// because the GORM model tags use PostgreSQL-specific defaults like gen_random_uuid().
	if err := createSQLiteTables(testDB); err != nil {
		panic("failed to migrate test database: " + err.Error())
	}

	code := m.Run()
	os.Exit(code)
}

// freshDB returns a clean database for each test by deleting all rows.
func freshDB() *gorm.DB {
	// Delete in correct order to respect foreign keys
	testDB.Exec("DELETE FROM order_items")
	testDB.Exec("DELETE FROM orders")
	testDB.Exec("DELETE FROM product_images")
	testDB.Exec("DELETE FROM products")
	testDB.Exec("DELETE FROM categories")
	testDB.Exec("DELETE FROM users")
	return testDB
}

// createSQLiteTables creates all tables with SQLite-compatible DDL.
// This avoids GORM AutoMigrate which emits PostgreSQL-specific defaults like gen_random_uuid().
func createSQLiteTables(db *gorm.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS "users" (
			"id" TEXT PRIMARY KEY,
			"email" TEXT NOT NULL UNIQUE,
			"password" TEXT NOT NULL,
			"name" TEXT,
			"role" TEXT DEFAULT 'editor',
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_deleted_at ON "users"("deleted_at")`,

		`CREATE TABLE IF NOT EXISTS "categories" (
			"id" TEXT PRIMARY KEY,
			"name" TEXT NOT NULL,
			"parent_id" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME,
			CONSTRAINT fk_categories_parent FOREIGN KEY ("parent_id") REFERENCES "categories"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_deleted_at ON "categories"("deleted_at")`,
		`CREATE INDEX IF NOT EXISTS idx_categories_name ON "categories"("name")`,
		`CREATE INDEX IF NOT EXISTS idx_categories_parent_id ON "categories"("parent_id")`,

		`CREATE TABLE IF NOT EXISTS "products" (
			"id" TEXT PRIMARY KEY,
			"title" TEXT NOT NULL,
			"description" TEXT NOT NULL,
			"price" NUMERIC NOT NULL,
			"category_id" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME,
			CONSTRAINT fk_products_category FOREIGN KEY ("category_id") REFERENCES "categories"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_deleted_at ON "products"("deleted_at")`,
		`CREATE INDEX IF NOT EXISTS idx_products_title ON "products"("title")`,
		`CREATE INDEX IF NOT EXISTS idx_products_category_id ON "products"("category_id")`,

		`CREATE TABLE IF NOT EXISTS "product_images" (
			"id" TEXT PRIMARY KEY,
			"product_id" TEXT NOT NULL,
			"image_url" TEXT NOT NULL,
			"position" INTEGER NOT NULL DEFAULT 0,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME,
			CONSTRAINT fk_product_images_product FOREIGN KEY ("product_id") REFERENCES "products"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_product_images_deleted_at ON "product_images"("deleted_at")`,
		`CREATE INDEX IF NOT EXISTS idx_product_images_product_id ON "product_images"("product_id")`,

		`CREATE TABLE IF NOT EXISTS "orders" (
			"id" TEXT PRIMARY KEY,
			"order_number" TEXT NOT NULL UNIQUE,
			"customer_name" TEXT,
			"customer_email" TEXT,
			"status" TEXT DEFAULT 'pending',
			"total" NUMERIC NOT NULL,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_deleted_at ON "orders"("deleted_at")`,

		`CREATE TABLE IF NOT EXISTS "order_items" (
			"id" TEXT PRIMARY KEY,
			"order_id" TEXT NOT NULL,
			"product_id" TEXT NOT NULL,
			"product_title" TEXT,
			"image_url" TEXT,
			"quantity" INTEGER NOT NULL,
			"price" NUMERIC NOT NULL,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			CONSTRAINT fk_order_items_order FOREIGN KEY ("order_id") REFERENCES "orders"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON "order_items"("order_id")`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_product_id ON "order_items"("product_id")`,
	}

	for _, sql := range tables {
		if err := db.Exec(sql).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedTestUser creates a user with the given role and returns it along with a valid JWT token.
func seedTestUser(db *gorm.DB, email, role string) (models.User, string) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hashed),
		Name:     "Test User",
		Role:     role,
	}
	db.Create(&user)

	token, _ := utils.GenerateToken(user.ID, user.Email, user.Role)
	return user, token
}

// seedCategory creates a test category. parentID may be nil for a root category.
func seedCategory(db *gorm.DB, name string, parentID *uuid.UUID) models.Category {
	cat := models.Category{
		ID:       uuid.New(),
		Name:     name,
		ParentID: parentID,
	}
	db.Create(&cat)
	return cat
}

// seedProduct creates a test product.
func seedProduct(db *gorm.DB, title string, categoryID *uuid.UUID, price float64) models.Product {
	prod := models.Product{
		ID:          uuid.New(),
		Title:       title,
		Description: "Test description for " + title,
		Price:       decimal.NewFromFloat(price),
		CategoryID:  categoryID,
	}
	db.Create(&prod)
	return prod
}

// seedProductImage creates an image record at the given position.
func seedProductImage(db *gorm.DB, productID uuid.UUID, url string, position int) models.ProductImage {
	img := models.ProductImage{
		ID:        uuid.New(),
		ProductID: productID,
		ImageURL:  url,
		Position:  position,
	}
	db.Create(&img)
	return img
}

// seedOrder creates an Order with one OrderItem referencing the given product.
func seedOrder(db *gorm.DB, productID uuid.UUID, imageURL string) models.Order {
	orderID := uuid.New()
	order := models.Order{
		ID:            orderID,
		OrderNumber:   "ORD" + time.Now().Format("20060102150405") + orderID.String()[:8],
		CustomerName:  "Test Customer",
		CustomerEmail: "customer@test.com",
		Status:        models.OrderStatusPending,
		Total:         decimal.NewFromFloat(14.99),
		Items: []models.OrderItem{
			{
				ID:           uuid.New(),
				OrderID:      orderID,
				ProductID:    productID,
				ProductTitle: "Test Product",
				ImageURL:     imageURL,
				Quantity:     1,
				Price:        decimal.NewFromFloat(14.99),
			},
		},
	}
	db.Create(&order)
	return order
}

// ==================== Router Setup Helpers ====================

// setupAuthRouter sets up routes for auth handler tests.
func setupAuthRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	authHandler := &AuthHandler{DB: db}

	api := r.Group("/api")
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	protected.GET("/auth/profile", authHandler.GetProfile)

	return r
}

// setupCategoryRouter sets up routes for category handler tests.
func setupCategoryRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	categoryHandler := &CategoryHandler{DB: db, Cache: noCache}

	api := r.Group("/api")
	api.GET("/categories", categoryHandler.GetCategories)
	api.GET("/categories/:id", categoryHandler.GetCategory)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.POST("/categories", categoryHandler.CreateCategory)
	admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
	admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)

	return r
}

// setupProductRouter sets up routes for product handler tests.
func setupProductRouter(db *gorm.DB) (*gin.Engine, *mockStorage) {
	r := gin.New()
	storage := newMockStorage()
	productHandler := &ProductHandler{DB: db, Storage: storage, Cache: noCache}

	api := r.Group("/api")

	// Public routes
	api.GET("/products", productHandler.GetProducts)
	api.GET("/products/:id", productHandler.GetProduct)

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.GET("/products", productHandler.GetProductsPaginated)
	admin.PUT("/products/:id", productHandler.UpdateProduct)
	admin.DELETE("/products/:id", productHandler.DeleteProduct)

	return r, storage
}

// setupDraftRouter sets up the draft lifecycle routes with a fresh DraftStore.
func setupDraftRouter(db *gorm.DB, storage *mockStorage) (*gin.Engine, *catalog.DraftStore) {
	r := gin.New()
	drafts := catalog.NewDraftStore(storage, 2*time.Second)
	draftHandler := &DraftHandler{DB: db, Drafts: drafts, Storage: storage, Cache: noCache}

	api := r.Group("/api")
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.POST("/products/drafts", draftHandler.CreateDraft)
	admin.GET("/products/drafts/:id", draftHandler.GetDraft)
	admin.PUT("/products/drafts/:id", draftHandler.UpdateDraft)
	admin.POST("/products/drafts/:id/images", draftHandler.UploadImages)
	admin.PUT("/products/drafts/:id/images/order", draftHandler.ReorderImages)
	admin.DELETE("/products/drafts/:id/images/:index", draftHandler.DeleteImage)
	admin.POST("/products/drafts/:id/submit", draftHandler.SubmitDraft)

	return r, drafts
}

// setupOrderRouter sets up routes for order handler tests.
func setupOrderRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	orderHandler := &OrderHandler{DB: db}

	api := r.Group("/api")
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.GET("/orders", orderHandler.GetOrders)
	admin.GET("/orders/:id", orderHandler.GetOrder)
	admin.GET("/dashboard", orderHandler.GetAdminDashboard)

	return r
}

// ==================== Request Helpers ====================

// jsonRequest creates an HTTP request with JSON body.
func jsonRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// authRequest creates an HTTP request with JSON body and Authorization header.
func authRequest(method, url string, body interface{}, token string) *http.Request {
	req := jsonRequest(method, url, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// multipartRequest creates a multipart form request with the given fields and file uploads.
// fields is a map of form field names to values.
// filenames are attached under the "images" field with dummy JPEG data.
// token is the JWT token for the Authorization header (pass "" to skip).
func multipartRequest(method, url string, fields map[string]string, filenames []string, token string) *http.Request {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, val := range fields {
		_ = writer.WriteField(key, val)
	}

	for _, filename := range filenames {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, filename))
		h.Set("Content-Type", "image/jpeg")

		part, err := writer.CreatePart(h)
		if err != nil {
			panic("failed to create multipart file part: " + err.Error())
		}
		part.Write([]byte("fake image data"))
	}

	writer.Close()

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// ==================== Response Helpers ====================

// parseResponse reads the response body into a map.
func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// parseResponseArray reads the response body into a slice of maps.
func parseResponseArray(w *httptest.ResponseRecorder) []interface{} {
	var result []interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}
