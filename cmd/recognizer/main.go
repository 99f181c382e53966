package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"faceattend/internal/attendance"
	"faceattend/internal/config"
	"faceattend/internal/faceclient"
	"faceattend/internal/queue"
	"faceattend/internal/recognition"
	"faceattend/internal/store"
)

// Recognizer consumes frame messages, resolves detected faces against the
// enrolled gallery and records login/logout events.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("migrate failed: %v", err)
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

	if !cfg.FaceSkip {
		if err := face.Health(ctx); err != nil {
			log.Printf("WARNING: face service not available: %v", err)
			log.Println("recognizer will retry when frames arrive")
		} else {
			log.Println("face service connected")
		}
	}

	gallery, err := buildGallery(ctx, repo, cfg.MatchThreshold)
	if err != nil {
		log.Fatalf("gallery build failed: %v", err)
	}
	if gallery.Size() == 0 {
		log.Println("WARNING: gallery is empty, every face will resolve to unknown")
	}

	session := recognition.NewSession(
		gallery,
		recognition.NewTracker(cfg.Cooldown),
		attendance.NewService(repo, attendance.ReopenNever),
	)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("recognizer started, waiting for frames...")
	for msg := range messages {
		if msg.Type != queue.TypeFrame {
			continue
		}

		frame, err := queue.DecodeFrame(msg)
		if err != nil {
			log.Printf("bad frame message: %v", err)
			continue
		}

		detections, err := face.Detect(ctx, frame.ImageURL)
		if err != nil {
			log.Printf("detect failed for frame %s: %v", frame.ID, err)
			continue
		}
		if len(detections) == 0 {
			continue
		}

		now := frame.CapturedAt
		if now.IsZero() {
			now = time.Now().UTC()
		}

		embeddings := make([][]float32, len(detections))
		for i, d := range detections {
			embeddings[i] = d.Embedding
		}

		for _, res := range session.ProcessFrame(ctx, embeddings, now) {
			switch {
			case res.Err != nil:
				log.Printf("frame %s: ledger update for %s failed: %v", frame.ID, res.Match.Name, res.Err)
			case !res.Matched:
				log.Printf("frame %s: unknown face (min distance %.3f)", frame.ID, res.Match.Distance)
			case res.Event != attendance.EventNone:
				log.Printf("frame %s: %s %s at %s", frame.ID, res.Match.Name, res.Event, now.Format("15:04:05"))
			}
		}
	}

	log.Println("recognizer stopped")
}

// buildGallery loads every enrolled reference embedding. Users that never
// produced an embedding simply have no entries; they are reported, not fatal.
func buildGallery(ctx context.Context, repo *attendance.Repository, threshold float64) (*recognition.Gallery, error) {
	faces, err := repo.ListEnrolledFaces(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]recognition.Entry, 0, len(faces))
	enrolled := make(map[int64]bool, len(faces))
	for _, f := range faces {
		entries = append(entries, recognition.Entry{UserID: f.UserID, Name: f.Name, Embedding: f.Embedding})
		enrolled[f.UserID] = true
	}

	if users, err := repo.ListUsers(ctx); err == nil {
		for _, u := range users {
			if !enrolled[u.ID] {
				log.Printf("user %d (%s) has no enrolled face, excluded from gallery", u.ID, u.Name)
			}
		}
	}

	gallery := recognition.NewGallery(entries, threshold)
	log.Printf("gallery built: %d embeddings, %d users", gallery.Size(), len(enrolled))
	return gallery, nil
}
