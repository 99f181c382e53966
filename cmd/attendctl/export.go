package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"faceattend/internal/attendance"
	"faceattend/internal/config"
	"faceattend/internal/report"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a daily attendance report to CSV",
	Long: `Export one day's attendance, with derived status, to a CSV file in the
report directory.

Example:
  attendctl export --date 2026-08-30`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("date", "", "Day to export (YYYY-MM-DD), defaults to today")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	ctx := cmd.Context()

	day, _ := cmd.Flags().GetString("date")
	if day == "" {
		day = attendance.DayOf(time.Now())
	} else if _, err := time.Parse("2006-01-02", day); err != nil {
		return fmt.Errorf("invalid date %q: %w", day, err)
	}

	repo, closeDB, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	entries, err := repo.ListDay(ctx, day)
	if err != nil {
		return err
	}
	rows := report.BuildRows(entries, cfg.MinPresence)

	if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(cfg.ReportDir, report.FileName(day))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := report.WriteCSV(f, rows); err != nil {
		return err
	}
	fmt.Printf("exported %d rows to %s\n", len(rows), path)
	return nil
}
