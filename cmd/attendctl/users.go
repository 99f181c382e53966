package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"faceattend/internal/attendance"
	"faceattend/internal/config"
	"faceattend/internal/store"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List and register users",
	RunE:  runUsersList,
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new user",
	Long: `Register a new user.

Example:
  attendctl users add --name "Asha Rao" --department CSE --batch 2023`,
	RunE: runUsersAdd,
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersAddCmd)

	usersAddCmd.Flags().String("name", "", "Full name (required)")
	usersAddCmd.Flags().String("email", "", "Email address")
	usersAddCmd.Flags().String("department", "", "Department (required)")
	usersAddCmd.Flags().String("batch", "", "Batch, defaults to 2")
	_ = usersAddCmd.MarkFlagRequired("name")
	_ = usersAddCmd.MarkFlagRequired("department")
}

// openRepo connects to the database and returns the repository.
func openRepo(ctx context.Context, cfg config.App) (*attendance.Repository, func(), error) {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("db connect failed: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return attendance.NewRepository(db.Client), func() { _ = db.Close() }, nil
}

func runUsersList(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	ctx := cmd.Context()

	repo, closeDB, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	users, err := repo.ListUsers(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tDEPARTMENT\tBATCH\tENROLLED")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%v\n", u.ID, u.Name, u.Email, u.Department, u.Batch, u.Enrolled)
	}
	return w.Flush()
}

func runUsersAdd(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	ctx := cmd.Context()

	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	department, _ := cmd.Flags().GetString("department")
	batch, _ := cmd.Flags().GetString("batch")

	repo, closeDB, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	user, err := repo.CreateUser(ctx, name, email, department, batch)
	if err != nil {
		return err
	}
	fmt.Printf("registered user %d (%s)\n", user.ID, user.Name)
	return nil
}
