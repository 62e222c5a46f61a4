package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/userauth/internal/client/client"
	"github.com/dmitrijs2005/userauth/internal/client/config"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// AuthAPI is the server surface the CLI needs. *client.APIClient satisfies it.
type AuthAPI interface {
	Register(ctx context.Context, userName, email string, password []byte) (*client.User, error)
	Login(ctx context.Context, userName string, password []byte) (string, error)
	Refresh(ctx context.Context, token string) (string, error)
	Profile(ctx context.Context, token string) (*client.User, error)
	Ping(ctx context.Context) error
}

type App struct {
	config *config.Config
	api    AuthAPI
	reader *bufio.Reader
	out    io.Writer

	mu       sync.Mutex
	token    string
	userName string
	mode     Mode
}

func NewApp(c *config.Config) (*App, error) {
	apiClient := client.NewAPIClient(c.ServerURL, c.RequestTimeout)
	return newApp(c, apiClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, api AuthAPI, in io.Reader, out io.Writer) *App {
	return &App{config: c, api: api, reader: bufio.NewReader(in), out: out}
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token != ""
}

func (a *App) session() (token, userName string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token, a.userName
}

func (a *App) setSession(token, userName string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token, a.userName = token, userName
}

// checkOnline pings the server once and updates the mode.
func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
