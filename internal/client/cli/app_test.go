package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/hirenest/internal/client/client"
	"github.com/dmitrijs2005/hirenest/internal/client/models"
	"github.com/dmitrijs2005/hirenest/internal/client/services"
	"github.com/dmitrijs2005/hirenest/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestWatchKindFor(t *testing.T) {
	now := time.Now()
	expired := sessionFor("a@x.io", models.UserTypeEmployer)
	expired.Identity.ExpiresAt = now.Add(-time.Minute)

	tests := []struct {
		name string
		s    models.Session
		want watchKind
	}{
		{"guest", models.Session{}, watchNone},
		{"seeker", sessionFor("s@x.io", models.UserTypeSeeker), watchNone},
		{"employer", sessionFor("e@x.io", models.UserTypeEmployer), watchEmployer},
		{"admin", sessionFor("a@x.io", models.UserTypeAdmin), watchAdmin},
		{"expired employer", expired, watchNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, watchKindFor(tt.s, now))
		})
	}
}

func TestApp_WatcherFollowsSession(t *testing.T) {
	ta := newTestApp(t, "")

	ta.session.set(sessionFor("e@x.io", models.UserTypeEmployer))
	assert.Equal(t, watchEmployer, ta.currentWatch())
	require.Eventually(t, func() bool { return ta.verification.Loads() > 0 }, time.Second, time.Millisecond)

	ta.session.set(sessionFor("a@x.io", models.UserTypeAdmin))
	assert.Equal(t, watchAdmin, ta.currentWatch())
	assert.Equal(t, 1, ta.verification.Resets(), "switching roles drops cached verification state")

	ta.session.set(models.Session{})
	assert.Equal(t, watchNone, ta.currentWatch())
	assert.Equal(t, 2, ta.verification.Resets())

	loads := ta.verification.Loads()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, loads, ta.verification.Loads(), "no polling after logout")
}

func TestApp_SameRoleKeepsWatcher(t *testing.T) {
	ta := newTestApp(t, "")

	ta.session.set(sessionFor("e@x.io", models.UserTypeEmployer))
	ta.watchMu.Lock()
	first := ta.poller
	ta.watchMu.Unlock()

	ta.session.set(sessionFor("e@x.io", models.UserTypeEmployer))
	ta.watchMu.Lock()
	second := ta.poller
	ta.watchMu.Unlock()

	assert.Same(t, first, second)
	assert.Zero(t, ta.verification.Resets())
}

func currentPoller(ta *testApp) *services.Poller {
	ta.watchMu.Lock()
	defer ta.watchMu.Unlock()
	return ta.poller
}

func TestApp_AccountSwitchStartsClean(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()

	ta.session.set(sessionFor("a@x.io", models.UserTypeEmployer))
	first := currentPoller(ta)
	require.NotNil(t, first)
	_, err := ta.notifications.Add(ctx, "Verification rejected", "Reason: forged documents", models.SeverityError)
	require.NoError(t, err)

	ta.session.set(models.Session{})
	assert.Len(t, ta.notifications.List(), 1, "logging out keeps the history")
	assert.Equal(t, 1, ta.verification.Resets())

	ta.session.set(sessionFor("b@x.io", models.UserTypeEmployer))
	assert.Empty(t, ta.notifications.List(), "another account never sees the previous history")
	second := currentPoller(ta)
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
}

func TestApp_DirectAccountSwitchRestartsWatcher(t *testing.T) {
	ta := newTestApp(t, "")

	ta.session.set(sessionFor("a@x.io", models.UserTypeEmployer))
	first := currentPoller(ta)

	ta.session.set(sessionFor("b@x.io", models.UserTypeEmployer))
	second := currentPoller(ta)

	assert.NotSame(t, first, second)
	assert.Equal(t, watchEmployer, ta.currentWatch())
	assert.Equal(t, 1, ta.verification.Resets())
}

func TestApp_NotificationOwnerSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "client.db")

	open := func() (*App, *fakeSession, services.NotificationService, *client.Repositories) {
		repos, err := client.InitDatabase(ctx, dsn)
		require.NoError(t, err)

		log := logging.NewNop()
		session := &fakeSession{}
		notes := services.NewNotificationService(repos.Notifications, 0, log)
		require.NoError(t, notes.Load(ctx))

		a := newApp(Deps{
			Log:           log,
			Session:       session,
			Verification:  &fakeVerification{},
			Notifications: notes,
			Metadata:      repos.Metadata,
			In:            strings.NewReader(""),
			Out:           &syncBuffer{},
		})
		a.closers = append(a.closers, repos.Close)
		return a, session, notes, repos
	}

	a1, s1, n1, _ := open()
	s1.set(sessionFor("a@x.io", models.UserTypeSeeker))
	_, err := n1.Add(ctx, "Welcome", "hello", models.SeverityInfo)
	require.NoError(t, err)
	a1.Close()

	a2, s2, n2, repos := open()
	defer a2.Close()
	require.Len(t, n2.List(), 1)

	s2.set(sessionFor("a@x.io", models.UserTypeSeeker))
	assert.Len(t, n2.List(), 1, "the same account keeps its history")

	s2.set(sessionFor("b@x.io", models.UserTypeSeeker))
	assert.Empty(t, n2.List())
	stored, err := repos.Notifications.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestApp_CloseStopsWatcher(t *testing.T) {
	ta := newTestApp(t, "")
	ta.session.set(sessionFor("e@x.io", models.UserTypeEmployer))

	ta.Close()
	ta.Close()

	assert.Equal(t, watchNone, ta.currentWatch())
	assert.True(t, ta.session.waited)
}

func TestApp_GetStatus(t *testing.T) {
	ta := newTestApp(t, "")
	assert.Equal(t, "(guest)", ta.getStatus())

	ta.session.set(sessionFor("s@x.io", models.UserTypeSeeker))
	assert.Equal(t, "(s@x.io SEEKER)", ta.getStatus())

	_, err := ta.notifications.Add(context.Background(), "Hi", "there", models.SeverityInfo)
	require.NoError(t, err)
	assert.Equal(t, "(s@x.io SEEKER | 1 unread)", ta.getStatus())
}

func TestApp_PrintsNewNotificationsOnce(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()

	n, err := ta.notifications.Add(ctx, "Verification approved", "Welcome aboard", models.SeveritySuccess)
	require.NoError(t, err)
	require.NoError(t, ta.notifications.MarkRead(ctx, n.ID))

	out := ta.out.String()
	assert.Contains(t, out, "[ok] Verification approved: Welcome aboard")
	assert.Equal(t, 1, strings.Count(out, "Verification approved"))
}

func TestApp_RunRestoresSessionAndExits(t *testing.T) {
	capturePrint(t)
	ta := newTestApp(t, "help\nexit\n")

	_, err := ta.notifications.Add(context.Background(), "Old", "from last run", models.SeverityInfo)
	require.NoError(t, err)

	ta.Run(context.Background())

	assert.Equal(t, []string{"initialize"}, ta.session.calls)
	assert.True(t, ta.session.waited)
	assert.Contains(t, ta.out.String(), "Welcome to HireNest CLI")
}
