package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/hirenest/internal/client/client"
	"github.com/dmitrijs2005/hirenest/internal/client/config"
	"github.com/dmitrijs2005/hirenest/internal/client/models"
	"github.com/dmitrijs2005/hirenest/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/hirenest/internal/client/services"
	"github.com/dmitrijs2005/hirenest/internal/logging"
	"github.com/dmitrijs2005/hirenest/internal/token"
)

// watchKind selects which background watcher runs for the current session.
type watchKind int

const (
	watchNone watchKind = iota
	watchEmployer
	watchAdmin
)

func (k watchKind) String() string {
	switch k {
	case watchEmployer:
		return "employer-status"
	case watchAdmin:
		return "admin-queue"
	default:
		return "none"
	}
}

// Deps are the collaborators an App is assembled from. NewApp builds the
// production set; tests pass fakes.
type Deps struct {
	Config        *config.Config
	Log           logging.Logger
	Session       services.SessionManager
	Verification  services.VerificationService
	Notifications services.NotificationService
	Metadata      metadata.Repository
	In            io.Reader
	Out           io.Writer
}

type App struct {
	config        *config.Config
	log           logging.Logger
	session       services.SessionManager
	verification  services.VerificationService
	notifications services.NotificationService
	reader        *bufio.Reader
	out           io.Writer
	now           func() time.Time

	outMu        sync.Mutex
	lastNotified string

	// watchMu guards the watcher and the account it runs for. owner is the
	// account the notification history belongs to.
	watchMu  sync.Mutex
	baseCtx  context.Context
	watching watchKind
	account  string
	owner    string
	poller   *services.Poller
	metadata metadata.Repository

	unsubscribe []func()
	closers     []func() error
	closeOnce   sync.Once
}

// NewApp opens the local database, builds the API client and services, and
// returns an App ready to Run.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	repos, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "dsn", c.DatabaseDSN, "error", err)
		return nil, err
	}

	tokens := token.NewHolder()
	api, err := client.NewHTTPClient(c.APIBaseURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithUploadTimeout(c.EffectiveUploadTimeout()),
		client.WithTokenSource(tokens),
	)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	a := newApp(Deps{
		Config:        c,
		Log:           log,
		Session:       services.NewSessionManager(api, tokens, log),
		Verification:  services.NewVerificationService(api, log),
		Notifications: services.NewNotificationService(repos.Notifications, c.MaxNotifications, log),
		Metadata:      repos.Metadata,
	})
	a.closers = append(a.closers, repos.Close)
	return a, nil
}

func newApp(d Deps) *App {
	if d.Log == nil {
		d.Log = logging.NewNop()
	}
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Config == nil {
		d.Config = &config.Config{}
		d.Config.LoadDefaults()
	}

	a := &App{
		config:        d.Config,
		log:           d.Log,
		session:       d.Session,
		verification:  d.Verification,
		notifications: d.Notifications,
		reader:        bufio.NewReader(d.In),
		out:           d.Out,
		now:           time.Now,
		baseCtx:       context.Background(),
		metadata:      d.Metadata,
	}

	a.unsubscribe = append(a.unsubscribe,
		d.Session.Subscribe(a.onSession),
		d.Notifications.Subscribe(a.onNotifications),
	)
	return a
}

// Run restores the previous session and serves the REPL until the user
// exits or input ends. Background watchers are stopped before Run returns.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.watchMu.Lock()
	a.baseCtx = ctx
	a.watchMu.Unlock()

	if err := a.notifications.Load(ctx); err != nil {
		a.log.Warn(ctx, "failed to load notifications", "error", err)
	}
	a.markNotificationsSeen()

	if err := a.session.Initialize(ctx); err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
	}

	a.println("Welcome to HireNest CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close stops the watcher and releases the local database. Safe to call
// more than once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		for _, unsub := range a.unsubscribe {
			unsub()
		}
		a.setWatch(watchNone, "")
		a.session.Wait()
		for _, c := range a.closers {
			if err := c(); err != nil {
				a.log.Warn(context.Background(), "close failed", "error", err)
			}
		}
	})
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().IsAuthenticated(a.now())
}

func (a *App) role() models.UserType {
	s := a.session.Snapshot()
	if !s.IsAuthenticated(a.now()) {
		return ""
	}
	return s.Identity.UserType
}

func (a *App) getStatus() string {
	s := a.session.Snapshot()
	if !s.IsAuthenticated(a.now()) {
		return "(guest)"
	}

	var b strings.Builder
	b.WriteString("(")
	b.WriteString(s.Identity.Email)
	b.WriteString(" ")
	b.WriteString(string(s.Identity.UserType))
	if n := a.notifications.Unread(); n > 0 {
		fmt.Fprintf(&b, " | %d unread", n)
	}
	b.WriteString(")")
	return b.String()
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func watchKindFor(s models.Session, now time.Time) watchKind {
	if !s.IsAuthenticated(now) {
		return watchNone
	}
	switch s.Identity.UserType {
	case models.UserTypeEmployer:
		return watchEmployer
	case models.UserTypeAdmin:
		return watchAdmin
	default:
		return watchNone
	}
}

// accountFor returns the signed-in account, or "" for a guest.
func accountFor(s models.Session, now time.Time) string {
	if !s.IsAuthenticated(now) {
		return ""
	}
	return s.Identity.Account()
}

// onSession re-reads the snapshot because deliveries may be reordered.
func (a *App) onSession(models.Session) {
	s := a.session.Snapshot()
	now := a.now()
	a.setWatch(watchKindFor(s, now), accountFor(s, now))
}

// setWatch makes kind the running watcher for account. Any change of role
// or account drops the cached verification state, and each session gets
// fresh watches so no baseline carries over to another account.
func (a *App) setWatch(kind watchKind, account string) {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()

	if kind == a.watching && account == a.account {
		return
	}
	if a.poller != nil {
		a.poller.Stop()
		a.poller = nil
	}
	if a.watching != watchNone || a.account != "" {
		a.verification.Reset()
	}
	a.watching, a.account = kind, account
	if account != "" {
		a.claimNotifications(account)
	}

	var p *services.Poller
	switch kind {
	case watchEmployer:
		w := services.NewEmployerStatusWatch(a.verification, a.notifications, a.metadata, account, a.log)
		p = services.NewEmployerStatusPoller(w, a.config.PollInterval, a.log)
	case watchAdmin:
		w := services.NewAdminQueueWatch(a.verification, a.notifications, a.metadata, account, a.log)
		p = services.NewAdminQueuePoller(w, a.config.PollInterval, a.log)
	default:
		return
	}

	if err := p.Start(a.baseCtx); err != nil {
		a.log.Warn(a.baseCtx, "failed to start watcher", "watch", kind.String(), "error", err)
		return
	}
	a.poller = p
}

// claimNotifications hands the notification history to account. History
// left by a different account is cleared. Callers hold watchMu.
func (a *App) claimNotifications(account string) {
	ctx := a.baseCtx
	owner := a.owner
	if owner == "" && a.metadata != nil {
		stored, _, err := metadata.GetString(ctx, a.metadata, metadata.KeyNotificationsOwner)
		if err != nil {
			a.log.Warn(ctx, "failed to read notification owner", "error", err)
		}
		owner = stored
	}
	if owner == account {
		a.owner = account
		return
	}

	if owner != "" {
		if err := a.notifications.Clear(ctx); err != nil {
			a.log.Warn(ctx, "failed to clear notifications", "error", err)
		}
	}
	a.owner = account
	if a.metadata != nil {
		if err := a.metadata.Set(ctx, metadata.KeyNotificationsOwner, []byte(account)); err != nil {
			a.log.Warn(ctx, "failed to persist notification owner", "error", err)
		}
	}
}

// triggerWatch asks the running watcher for an out-of-band poll.
func (a *App) triggerWatch() {
	a.watchMu.Lock()
	p := a.poller
	a.watchMu.Unlock()
	if p != nil {
		p.Trigger()
	}
}

func (a *App) currentWatch() watchKind {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	return a.watching
}

func (a *App) markNotificationsSeen() {
	list := a.notifications.List()
	a.outMu.Lock()
	defer a.outMu.Unlock()
	if len(list) > 0 {
		a.lastNotified = list[0].ID
	}
}

// onNotifications prints the newest notification as soon as it arrives.
func (a *App) onNotifications(list []models.Notification) {
	if len(list) == 0 {
		return
	}
	newest := list[0]

	a.outMu.Lock()
	defer a.outMu.Unlock()
	if newest.ID == a.lastNotified || newest.Read {
		return
	}
	a.lastNotified = newest.ID
	fmt.Fprintf(a.out, "\n%s %s: %s\n", severityMark(newest.Severity), newest.Title, newest.Message)
}
