package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"Mansoor88-6/activity-agent/internal/client"
	"Mansoor88-6/activity-agent/internal/config"
	"Mansoor88-6/activity-agent/internal/models"
	"Mansoor88-6/activity-agent/internal/review"

	"go.uber.org/zap"
)

const reviewTimeout = time.Minute

// Execute implements the go-flags Commander interface for ReviewCommand.
func (c *ReviewCommand) Execute(args []string) error {
	cfg, log, err := loadRuntime(c.globals.Config)
	if err != nil {
		return err
	}
	defer log.Sync()

	apiClient := client.NewAPIClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, cfg.Backend.TimeoutDuration(), log.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), reviewTimeout)
	defer cancel()
	return c.execute(ctx, cfg, apiClient, os.Stdout, log.Logger)
}

// execute runs the review against the given store (injectable for testing).
func (c *ReviewCommand) execute(ctx context.Context, cfg *config.Config, store review.TimeSlotStore, out io.Writer, logger *zap.Logger) error {
	loc, err := c.location(cfg)
	if err != nil {
		return err
	}
	day, err := c.day(loc)
	if err != nil {
		return err
	}

	query := models.TimeSlotQuery{
		OrganizationID: cfg.Backend.OrganizationID,
		EmployeeIDs:    c.Employees,
		Start:          day,
		End:            day.AddDate(0, 0, 1).Add(-time.Second),
	}

	gallery := review.NewMemoryGallery()
	session := review.NewSession(store, gallery, loc, logger)
	defer session.Leave()

	if err := session.Load(ctx, query); err != nil {
		return err
	}
	for _, slot := range session.Slots() {
		gallery.Add(slot.Screenshots...)
	}

	selection := session.Selection()
	if c.SelectAll && !selection.AllSelected() {
		selection.ToggleAll()
	}
	for _, id := range c.Select {
		if selection.IsSelected(id) {
			continue
		}
		if !selection.Toggle(id) {
			return fmt.Errorf("time slot %q is not in the reviewed range", id)
		}
	}

	if c.Delete {
		if selection.SelectedCount() == 0 {
			return errors.New("nothing selected to delete")
		}
		before := len(gallery.Items())
		ids, err := session.DeleteSelected(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %d time slots, %d screenshots\n", len(ids), before-len(gallery.Items()))
	}

	return review.Render(out, session)
}

func (c *ReviewCommand) location(cfg *config.Config) (*time.Location, error) {
	if c.Timezone == "" {
		return cfg.Location()
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *ReviewCommand) day(loc *time.Location) (time.Time, error) {
	if c.Date == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	day, err := time.ParseInLocation("2006-01-02", c.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", c.Date, err)
	}
	return day, nil
}
