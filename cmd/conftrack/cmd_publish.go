package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"conftrack/internal/calendar"
	"conftrack/internal/notify"
	"conftrack/internal/report"
	"conftrack/internal/sitesync"
)

// reportCmd renders the HTML deadline table
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the HTML deadline report",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := newStore().Load()
		if err != nil {
			return err
		}
		if err := report.WriteFile(cfg.Output.ReportPath, db, time.Now()); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d conferences)\n", cfg.Output.ReportPath, len(db))
		return nil
	},
}

// calendarCmd exports deadlines as an iCalendar feed
var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Export deadlines as an iCalendar (.ics) feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := newStore().Load()
		if err != nil {
			return err
		}
		if err := calendar.WriteFile(cfg.Output.CalendarPath, db, time.Now()); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", cfg.Output.CalendarPath)
		return nil
	},
}

// syncCmd pushes the database to the website repository
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Commit and push the database to the website git repo",
	RunE:  runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	if cfg.Website.RepoPath == "" {
		return fmt.Errorf("website repo not configured (set website.repo_path or CONFTRACK_WEBSITE_REPO)")
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	syncer := sitesync.New(cfg.Website.RepoPath, cfg.Website.DatabasePath, logger)
	syncer.Token = cfg.Website.Token
	if err := syncer.Sync(ctx, cfg.Store.DatabasePath, time.Now()); err != nil {
		return err
	}
	fmt.Println("Database synced to website repo")
	return nil
}

// notifyCmd verifies the email configuration
var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Check SMTP settings by sending a test email",
	RunE: func(cmd *cobra.Command, args []string) error {
		notifier := notify.New(cfg.Email.SMTPServer, cfg.Email.SMTPPort,
			cfg.Email.From, cfg.Email.Password, cfg.Email.To, logger)
		if !notifier.Configured() {
			return fmt.Errorf("email not configured (set EMAIL_FROM, EMAIL_PASSWORD, EMAIL_TO)")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		err := notifier.Send(ctx,
			"Test Email - Conference Tracker",
			"<html><body><h2>Email configuration successful!</h2>"+
				"<p>You will receive notifications when deadlines change.</p></body></html>",
			"Email configuration successful! You will receive notifications when deadlines change.")
		if err != nil {
			return err
		}
		fmt.Printf("Test email sent to %s\n", notifier.To)
		return nil
	},
}
