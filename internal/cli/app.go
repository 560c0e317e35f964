package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/atriahub/pkg/hub"
	"github.com/aussiebroadwan/atriahub/pkg/slogx"
)

type contextKey string

const appKey contextKey = "atria-app"

// App is the state shared by every command. The root command builds it in
// PersistentPreRunE and closes it in PersistentPostRunE.
type App struct {
	Config hub.Config
	Logger *slog.Logger
	Hub    *hub.Hub
}

// newApp builds the logger and the hub. Extra hub options are appended
// after the prompter, so callers can replace it.
func newApp(cfg hub.Config, version string, prompter *Prompter, opts ...hub.Option) (*App, error) {
	logger := slogx.New(slogx.Config{
		Service: "atria",
		Version: version,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	h, err := hub.New(cfg, append([]hub.Option{
		hub.WithLogger(logger),
		hub.WithCredentialSource(prompter),
		hub.WithMFAPrompt(prompter.OneTimeCode),
	}, opts...)...)
	if err != nil {
		return nil, err
	}

	return &App{Config: cfg, Logger: logger, Hub: h}, nil
}

// ready initializes the hub, signing in if needed.
func (a *App) ready(ctx context.Context) (*hub.Ready, error) {
	r, err := a.Hub.Initialize(ctx, hub.InitializeInput{})
	if err != nil {
		return nil, fmt.Errorf("initialize hub: %w", err)
	}
	slogx.FromContext(ctx).Debug("hub ready", "user", r.User.Email)
	return r, nil
}

// owner returns user, or the signed-in username when user is empty.
func (a *App) owner(ctx context.Context, user string) (string, error) {
	if user != "" {
		return user, nil
	}
	return a.Hub.Auth().Username(ctx)
}

func (a *App) Close() error {
	return a.Hub.Close()
}

func injectApp(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, appKey, a)
}

// commandContext carries a and a logger tagged with the command path, which
// the hub's HTTP clients pick up for every request made under ctx.
func commandContext(ctx context.Context, a *App, path string) context.Context {
	return injectApp(slogx.WithContext(ctx, a.Logger.With("command", path)), a)
}

// appFrom returns the App injected by the root command.
func appFrom(ctx context.Context) *App {
	a, ok := ctx.Value(appKey).(*App)
	if !ok {
		panic("atria: app not found in context")
	}
	return a
}
