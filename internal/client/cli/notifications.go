package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/hirenest/internal/client/models"
)

func severityMark(s models.Severity) string {
	switch s {
	case models.SeveritySuccess:
		return "[ok]"
	case models.SeverityError:
		return "[!!]"
	default:
		return "[i]"
	}
}

// Notifications prints the notification history, newest first. Unread
// entries are marked with '*'.
func (a *App) Notifications(ctx context.Context) error {
	list := a.notifications.List()
	if len(list) == 0 {
		a.println("No notifications")
		return nil
	}

	var b strings.Builder
	for _, n := range list {
		unread := " "
		if !n.Read {
			unread = "*"
		}
		fmt.Fprintf(&b, "%s %s %s %s: %s (%s)\n",
			unread, n.CreatedAt.Local().Format(timeLayout), severityMark(n.Severity), n.Title, n.Message, n.ID)
	}
	a.printf("%s", b.String())
	return nil
}

// Read marks one notification, or all of them, as read.
//
//	read <id>|all
func (a *App) Read(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: read <id>|all")
		return nil
	}
	if args[0] == "all" {
		return a.notifications.MarkAllRead(ctx)
	}
	return a.notifications.MarkRead(ctx, args[0])
}
