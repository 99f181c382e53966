package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"faceattend/internal/attendance"
	"faceattend/internal/cloudinary"
	"faceattend/internal/config"
	"faceattend/internal/faceclient"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <user-id> <image-url | directory>",
	Short: "Enroll reference face images for a user",
	Long: `Enroll reference face images for a user. The argument is either a single
image URL, or a local directory of images which are uploaded to Cloudinary
one by one.

Example:
  attendctl enroll 7 https://example.com/asha.jpg
  attendctl enroll 7 ./captures/asha/`,
	Args: cobra.ExactArgs(2),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := cmd.Context()

	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || userID <= 0 {
		return fmt.Errorf("invalid user id %q", args[0])
	}
	source := args[1]

	repo, closeDB, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	user, err := repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %d not found", userID)
	}

	face := faceclient.New(cfg.FaceServiceURL, cfg.FaceSkip)

	if info, statErr := os.Stat(source); statErr == nil && info.IsDir() {
		return enrollDirectory(cmd, cfg, repo, face, userID, source)
	}

	embedding, err := face.Embed(ctx, source)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}
	if err := repo.AddFace(ctx, userID, embedding); err != nil {
		return err
	}
	_ = repo.SetUserImage(ctx, userID, source)
	fmt.Printf("enrolled %s with 1 embedding (%d dims)\n", user.Name, len(embedding))
	return nil
}

// enrollDirectory uploads every image in dir and stores one embedding per
// image. A file that yields no face is reported and skipped; the rest of the
// batch continues.
func enrollDirectory(cmd *cobra.Command, cfg config.App, repo *attendance.Repository, face *faceclient.Client, userID int64, dir string) error {
	ctx := cmd.Context()

	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return fmt.Errorf("directory enrollment needs Cloudinary credentials (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET)")
	}
	cdn := cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var images []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			images = append(images, filepath.Join(dir, e.Name()))
		}
	}
	if len(images) == 0 {
		return fmt.Errorf("no images found in %s", dir)
	}

	bar := progressbar.NewOptions(len(images),
		progressbar.OptionSetDescription("Enrolling faces"),
		progressbar.OptionShowCount(),
	)

	var enrolled, skipped int
	for _, path := range images {
		_ = bar.Add(1)

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nread %s failed: %v\n", path, err)
			skipped++
			continue
		}
		result, err := cdn.UploadBytes(data, filepath.Base(path))
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nupload %s failed: %v\n", path, err)
			skipped++
			continue
		}
		embedding, err := face.Embed(ctx, result.SecureURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nno usable face in %s: %v\n", path, err)
			skipped++
			continue
		}
		if err := repo.AddFace(ctx, userID, embedding); err != nil {
			fmt.Fprintf(os.Stderr, "\nstore embedding for %s failed: %v\n", path, err)
			skipped++
			continue
		}
		enrolled++
	}

	fmt.Printf("\nenrolled %d embeddings, skipped %d\n", enrolled, skipped)
	if enrolled == 0 {
		return fmt.Errorf("no embeddings enrolled")
	}
	return nil
}
