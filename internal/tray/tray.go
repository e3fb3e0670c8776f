package tray

import (
	"context"
	"time"

	"Mansoor88-6/activity-agent/internal/health"
	"Mansoor88-6/activity-agent/internal/models"

	"github.com/getlantern/systray"
	"go.uber.org/zap"
)

const toggleTimeout = 15 * time.Second

// Controller is the health monitor as seen from the tray
type Controller interface {
	Subscribe(fn func(bool))
	SetEnabled(ctx context.Context, enabled bool) health.State
	Status() models.ConnectionHealth
}

// Tray shows the daemon connection in the system tray and lets the user
// switch supervision on and off
type Tray struct {
	ctrl   Controller
	logger *zap.Logger
}

func New(ctrl Controller, logger *zap.Logger) *Tray {
	return &Tray{ctrl: ctrl, logger: logger}
}

// Run blocks on the tray event loop until Quit is called. onQuit runs
// when the user picks Quit from the menu.
func (t *Tray) Run(onQuit func()) {
	systray.Run(func() { t.onReady(onQuit) }, func() {
		t.logger.Info("Tray closed")
	})
}

// Quit stops the tray event loop
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady(onQuit func()) {
	status := t.ctrl.Status()
	t.show(status.Enabled && status.Alive)

	toggle := systray.AddMenuItemCheckbox("Track activity", "Collect activity from the local daemon", status.Enabled)
	systray.AddSeparator()
	quit := systray.AddMenuItem("Quit", "Stop the agent")

	t.ctrl.Subscribe(t.show)

	go func() {
		for {
			select {
			case <-toggle.ClickedCh:
				enabled := !toggle.Checked()
				if enabled {
					toggle.Check()
				} else {
					toggle.Uncheck()
				}
				ctx, cancel := context.WithTimeout(context.Background(), toggleTimeout)
				state := t.ctrl.SetEnabled(ctx, enabled)
				cancel()
				t.logger.Info("Activity tracking toggled from tray",
					zap.Bool("enabled", enabled),
					zap.String("state", state.String()),
				)
			case <-quit.ClickedCh:
				t.logger.Info("Quit requested from tray")
				if onQuit != nil {
					onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) show(connected bool) {
	title, tooltip := Label(connected)
	systray.SetTitle(title)
	systray.SetTooltip(tooltip)
}

// Label returns the tray title and tooltip for the broadcast signal
func Label(connected bool) (title, tooltip string) {
	if connected {
		return "Activity: on", "Activity daemon connected"
	}
	return "Activity: off", "Activity daemon disconnected or tracking disabled"
}
