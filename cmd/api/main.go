package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"faceattend/internal/attendance"
	"faceattend/internal/cloudinary"
	"faceattend/internal/config"
	"faceattend/internal/faceclient"
	"faceattend/internal/httpmiddleware"
	"faceattend/internal/queue"
	"faceattend/internal/report"
	"faceattend/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "faceattend:frames")
	}

	repo := attendance.NewRepository(db.Client)
	face := faceclient.New(cfg.FaceServiceURL, cfg.FaceSkip)

	// Cloudinary client (nil when not configured)
	var cdnClient *cloudinary.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cdnClient = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("Cloudinary not configured; enrollment accepts image URLs only")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		faceHealthy := face.Health(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !faceHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "face": faceHealthy})
	})

	r.POST("/v1/users", func(c *gin.Context) {
		var req struct {
			Name       string `json:"name" binding:"required"`
			Email      string `json:"email"`
			Department string `json:"department" binding:"required"`
			Batch      string `json:"batch"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, err := repo.CreateUser(c.Request.Context(), req.Name, req.Email, req.Department, req.Batch)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, user)
	})

	r.GET("/v1/users", func(c *gin.Context) {
		users, err := repo.ListUsers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users})
	})

	// Enrollment: resolve an image URL (upload or passthrough), extract one
	// reference embedding, store it. A zero-face image rejects enrollment
	// without touching previously stored embeddings.
	r.POST("/v1/users/:id/enroll", func(c *gin.Context) {
		user, err := lookupUser(c, repo)
		if err != nil {
			return
		}

		imageURL, ok := resolveEnrollImage(c, cdnClient)
		if !ok {
			return
		}

		embedding, err := face.Embed(c.Request.Context(), imageURL)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}

		if err := repo.AddFace(c.Request.Context(), user.ID, embedding); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		_ = repo.SetUserImage(c.Request.Context(), user.ID, imageURL)

		c.JSON(http.StatusOK, gin.H{"user_id": user.ID, "image_url": imageURL, "dims": len(embedding)})
	})

	r.POST("/v1/frames", func(c *gin.Context) {
		var req struct {
			ImageURL   string    `json:"image_url" binding:"required"`
			Source     string    `json:"source"`
			CapturedAt time.Time `json:"captured_at"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		frame := queue.NewFrame(req.ImageURL, req.Source, req.CapturedAt)
		msg, err := frame.Message()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := q.Publish(c.Request.Context(), msg); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queue publish failed"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"frame_id": frame.ID, "captured_at": frame.CapturedAt})
	})

	r.GET("/v1/attendance", func(c *gin.Context) {
		day := c.DefaultQuery("date", attendance.DayOf(time.Now()))
		entries, err := repo.ListDay(c.Request.Context(), day)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"date": day, "rows": report.BuildRows(entries, cfg.MinPresence)})
	})

	r.GET("/v1/reports/daily", func(c *gin.Context) {
		day := c.DefaultQuery("date", attendance.DayOf(time.Now()))
		entries, err := repo.ListDay(c.Request.Context(), day)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		rows := report.BuildRows(entries, cfg.MinPresence)

		c.Header("Content-Disposition", "attachment; filename="+report.FileName(day))
		c.Header("Content-Type", "text/csv")
		if err := report.WriteCSV(c.Writer, rows); err != nil {
			log.Printf("report write failed: %v", err)
		}
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

var errUserNotFound = errors.New("user not found")

func scanID(s string, id *int64) error {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return errors.New("invalid id")
	}
	*id = v
	return nil
}

// lookupUser resolves the :id path param. Writes the error response itself.
func lookupUser(c *gin.Context, repo *attendance.Repository) (*attendance.User, error) {
	var id int64
	if err := scanID(c.Param("id"), &id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return nil, err
	}
	user, err := repo.GetUser(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, err
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return nil, errUserNotFound
	}
	return user, nil
}

// resolveEnrollImage picks the enrollment image source: multipart upload or
// base64 data go through Cloudinary; a plain image_url passes through.
func resolveEnrollImage(c *gin.Context, cdnClient *cloudinary.Client) (string, bool) {
	contentType := c.ContentType()

	if strings.Contains(contentType, "multipart/form-data") {
		if cdnClient == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
			return "", false
		}
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
			return "", false
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "read file failed"})
			return "", false
		}
		result, err := cdnClient.UploadBytes(data, header.Filename)
		if err != nil {
			log.Printf("cloudinary upload failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
			return "", false
		}
		return result.SecureURL, true
	}

	var body struct {
		ImageURL string `json:"image_url"`
		Data     string `json:"data"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || (body.ImageURL == "" && body.Data == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide image_url or base64 data"})
		return "", false
	}
	if body.ImageURL != "" {
		return body.ImageURL, true
	}
	if cdnClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
		return "", false
	}
	result, err := cdnClient.UploadBase64(body.Data)
	if err != nil {
		log.Printf("cloudinary upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
		return "", false
	}
	return result.SecureURL, true
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
