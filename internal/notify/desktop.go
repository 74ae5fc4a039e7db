package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// desktopNotify sends a freedesktop notification titled with the app name and notice title.
func desktopNotify(appName string, n Notice) error {
	title := n.Title
	if appName != "" {
		title = appName + ": " + n.Title
	}
	if err := beeep.Notify(title, n.Description, ""); err != nil {
		return fmt.Errorf("desktop notify failed: %w", err)
	}
	return nil
}
