package cli

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/hirenest/internal/client/models"
	"github.com/dmitrijs2005/hirenest/internal/client/repositories/notifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationsCommand(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()

	require.NoError(t, ta.Notifications(ctx))
	assert.Contains(t, ta.out.String(), "No notifications")

	a, err := ta.notifications.Add(ctx, "Pending", "under review", models.SeverityInfo)
	require.NoError(t, err)
	_, err = ta.notifications.Add(ctx, "Rejected", "bad scan", models.SeverityError)
	require.NoError(t, err)

	require.NoError(t, ta.Read(ctx, []string{a.ID}))
	assert.Equal(t, 1, ta.notifications.Unread())

	require.NoError(t, ta.Notifications(ctx))
	out := ta.out.String()
	assert.Contains(t, out, "* ")
	assert.Contains(t, out, "[!!] Rejected: bad scan")
	assert.Contains(t, out, "[i] Pending: under review")

	require.NoError(t, ta.Read(ctx, []string{"all"}))
	assert.Zero(t, ta.notifications.Unread())
}

func TestReadCommand_Errors(t *testing.T) {
	ta := newTestApp(t, "")

	require.NoError(t, ta.Read(context.Background(), nil))
	assert.Contains(t, ta.out.String(), "Usage: read")

	require.ErrorIs(t, ta.Read(context.Background(), []string{"nope"}), notifications.ErrNotFound)
}

func TestSeverityMark(t *testing.T) {
	assert.Equal(t, "[ok]", severityMark(models.SeveritySuccess))
	assert.Equal(t, "[!!]", severityMark(models.SeverityError))
	assert.Equal(t, "[i]", severityMark(models.SeverityInfo))
}
