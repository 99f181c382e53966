// Package report turns attendance records into the daily export. All
// clock/duration string formatting lives here, at the boundary; the core
// keeps structured values.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"faceattend/internal/attendance"
)

// Row is one line of the daily report.
type Row struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Batch      string `json:"batch"`
	Date       string `json:"date"`
	LoginTime  string `json:"login_time"`
	LogoutTime string `json:"logout_time"`
	Duration   string `json:"duration"`
	Status     string `json:"status"`
}

var header = []string{"name", "email", "department", "batch", "date", "login_time", "logout_time", "duration", "status"}

// BuildRows classifies and formats one day's entries.
func BuildRows(entries []attendance.DayEntry, minPresence time.Duration) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rec := e.Record
		row := Row{
			Name:       e.User.Name,
			Email:      e.User.Email,
			Department: e.User.Department,
			Batch:      e.User.Batch,
			Date:       rec.Day,
			LoginTime:  formatClock(rec.Login),
			Status:     string(attendance.Classify(rec, minPresence)),
		}
		if rec.Logout != nil {
			row.LogoutTime = formatClock(*rec.Logout)
		}
		if rec.Duration != nil && *rec.Duration >= 0 {
			row.Duration = FormatDuration(*rec.Duration)
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteCSV emits header plus rows.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.Name, r.Email, r.Department, r.Batch, r.Date, r.LoginTime, r.LogoutTime, r.Duration, r.Status}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName returns the export name for a day, e.g. attendance_2026-08-30.csv.
func FileName(day string) string {
	return fmt.Sprintf("attendance_%s.csv", day)
}

// FormatDuration renders a duration as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func formatClock(t time.Time) string {
	return t.Format("15:04:05")
}
