package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/clouddemo/internal/client/client"
	"github.com/dmitrijs2005/clouddemo/internal/client/config"
	"github.com/dmitrijs2005/clouddemo/internal/client/panels"
	"github.com/dmitrijs2005/clouddemo/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clouddemo/internal/client/services"
	"github.com/dmitrijs2005/clouddemo/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Services are the backend-facing services the dashboard drives.
type Services struct {
	Sessions  services.SessionStore
	Notes     services.NoteService
	Chat      services.ChatService
	Storage   services.StorageService
	Functions services.FunctionService
	Health    func(ctx context.Context) error
}

type App struct {
	cfg    *config.Config
	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer
	loc    *time.Location

	svc    Services
	toasts *panels.Recorder
	auth   *panels.AuthForm
	notes  *panels.NotesPanel
	chat   *panels.ChatPanel
	files  *panels.StoragePanel
	fn     *panels.FunctionPanel

	mu        sync.Mutex
	mode      Mode
	mountedAs string

	closers []func() error
}

func newApp(cfg *config.Config, log logging.Logger, svc Services, in io.Reader, out io.Writer) *App {
	toasts := &panels.Recorder{}
	return &App{
		cfg:    cfg,
		log:    log,
		reader: bufio.NewReader(in),
		out:    out,
		loc:    time.Local,
		svc:    svc,
		toasts: toasts,
		auth:   panels.NewAuthForm(svc.Sessions, toasts),
		notes:  panels.NewNotesPanel(svc.Notes, toasts),
		chat:   panels.NewChatPanel(svc.Chat, toasts, log),
		files:  panels.NewStoragePanel(svc.Storage, toasts, log),
		fn:     panels.NewFunctionPanel(svc.Functions, toasts),
	}
}

// NewApp opens the local session database and builds every adapter the
// dashboard needs. Close releases them.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	var closers []func() error
	fail := func(err error) (*App, error) {
		for _, c := range closers {
			_ = c()
		}
		return nil, err
	}

	localDB, err := client.InitDatabase(ctx, cfg.SessionDBPath)
	if err != nil {
		log.Error(ctx, "error initializing local database", "error", err)
		return fail(err)
	}
	closers = append(closers, localDB.Close)

	repo := metadata.NewSQLiteRepository(localDB)
	key, err := services.LoadSessionKey(ctx, repo, cfg.KeyFile)
	if err != nil {
		return fail(err)
	}

	realtime, err := client.NewRealtime(cfg.BackendURL, cfg.AnonKey, log.With("component", "realtime"))
	if err != nil {
		return fail(err)
	}

	svc := buildServices(cfg, log, repo, key, realtime)
	app := newApp(cfg, log, svc, in, out)
	app.closers = closers
	return app, nil
}

func buildServices(cfg *config.Config, log logging.Logger, repo metadata.Repository, key []byte, changes client.Changes) Services {
	endpoint := client.NewEndpoint(cfg.BackendURL, cfg.AnonKey, cfg.RequestTimeout)
	auth := client.NewAuthAPI(endpoint)
	tables := client.NewTableAPI(endpoint)
	objects := client.NewStorage(client.StorageConfig{
		BaseURL:    cfg.BackendURL,
		ProjectRef: cfg.ProjectRef,
		AnonKey:    cfg.AnonKey,
		Region:     cfg.S3Region,
		Bucket:     cfg.Bucket,
	})

	sessions := services.NewSessionStore(auth, repo, key, log.With("component", "session"))
	return Services{
		Sessions:  sessions,
		Notes:     services.NewNoteService(tables, sessions),
		Chat:      services.NewChatService(tables, sessions, changes, cfg.ChatHistoryLimit, log.With("component", "chat")),
		Storage:   services.NewStorageService(objects, sessions, cfg.FileListLimit, cfg.MaxUploadSize),
		Functions: services.NewFunctionService(client.NewFunctionsAPI(endpoint), sessions, cfg.FunctionName),
		Health:    auth.Health,
	}
}

// Close releases the resources opened by NewApp.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Run restores the session, starts the health watcher and serves the REPL
// until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.unmountAll()

	a.println(titleStyle.Render("Cloud Platform Integration Demo") + " (type 'help' for commands)")
	a.println(renderLoading())
	if err := a.svc.Sessions.Init(ctx); err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
	}

	if a.svc.Health != nil {
		a.checkHealth(ctx)
		go a.StartOnlineStatusWatcher(ctx, a.cfg.HealthCheckInterval)
	}

	a.settle(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "switched mode", "mode", mode)
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) checkHealth(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.svc.Health(ctx); err != nil {
		a.log.Debug(ctx, "health check failed", "error", err)
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher checks backend health every interval until ctx is
// done. A non-positive interval disables the watcher.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		a.log.Warn(ctx, "health watcher disabled", "interval", interval)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkHealth(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.svc.Sessions.State().Session != nil
}

func (a *App) getStatus() string {
	s := ""
	if sess := a.svc.Sessions.State().Session; sess != nil {
		s = sess.User.Email + " "
	}
	if m := a.Mode(); m != "" {
		s += string(m)
	}
	s = strings.TrimSpace(s)
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// settle prints pending toasts and mounts or unmounts the panels when the
// signed-in user changed.
func (a *App) settle(ctx context.Context) {
	a.flushToasts()

	var uid string
	if sess := a.svc.Sessions.State().Session; sess != nil {
		uid = sess.User.ID
	}

	a.mu.Lock()
	prev := a.mountedAs
	a.mountedAs = uid
	a.mu.Unlock()
	if uid == prev {
		return
	}

	if prev != "" {
		a.unmountAll()
	}
	if uid == "" {
		a.println(renderLanding())
		return
	}
	a.mountAll(ctx)
	_ = a.Dashboard(ctx)
}

func (a *App) mountAll(ctx context.Context) {
	if err := a.notes.Mount(ctx); err != nil {
		a.log.Debug(ctx, "notes mount", "error", err)
	}
	if err := a.chat.Mount(ctx); err != nil {
		a.log.Debug(ctx, "chat mount", "error", err)
	}
	if err := a.files.Mount(ctx); err != nil {
		a.log.Debug(ctx, "storage mount", "error", err)
	}
	a.fn.Mount(ctx)
}

func (a *App) unmountAll() {
	a.notes.Unmount()
	a.chat.Unmount()
	a.files.Unmount()
	a.fn.Unmount()
}

func (a *App) flushToasts() {
	for _, t := range a.toasts.Drain() {
		a.println(renderToast(t))
	}
}

func (a *App) println(s string) {
	fmt.Fprintln(a.out, s)
}
