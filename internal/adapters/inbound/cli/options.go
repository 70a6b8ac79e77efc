package cli

import (
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdidvp/slopwatch/internal/adapters/outbound/cache"
	"github.com/abdidvp/slopwatch/internal/adapters/outbound/config"
	"github.com/abdidvp/slopwatch/internal/adapters/outbound/gitinfo"
	"github.com/abdidvp/slopwatch/internal/adapters/outbound/history"
	"github.com/abdidvp/slopwatch/internal/adapters/outbound/invoker"
	"github.com/abdidvp/slopwatch/internal/application"
	"github.com/abdidvp/slopwatch/internal/domain"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	settingsFile   string
	analyzerConfig string
	executable     string
	warn           float64
	fail           float64
	verbose        bool
}

// settings loads the workspace settings and applies flag overrides.
func (o *rootOptions) settings(cmd *cobra.Command, root string) (domain.Settings, error) {
	loader := config.New()

	var (
		s   domain.Settings
		err error
	)
	if o.settingsFile != "" {
		s, err = loader.LoadFile(o.settingsFile)
	} else {
		s, err = loader.Load(root)
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("loading settings: %w", err)
	}

	flags := cmd.Flags()
	if o.analyzerConfig != "" {
		s.ConfigPath = o.analyzerConfig
	}
	if o.executable != "" {
		s.Executable = o.executable
	}
	if flags.Changed("warn") {
		s.WarnThreshold = o.warn
	}
	if flags.Changed("fail") {
		s.FailThreshold = o.fail
	}

	if err := s.Validate(); err != nil {
		return domain.Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

func (o *rootOptions) logger(cmd *cobra.Command, component string) *log.Logger {
	var w io.Writer = io.Discard
	if o.verbose {
		w = cmd.ErrOrStderr()
	}
	return log.New(w, "[slopwatch:"+component+"] ", log.LstdFlags)
}

// app is a wired session plus the adapters commands touch directly.
type app struct {
	session  *application.Session
	store    *cache.Store
	settings domain.Settings
	root     string
	logger   *log.Logger

	// settingsFile is the file reload watches; reload re-reads it with
	// the command's flag overrides.
	settingsFile string
	reload       func() (domain.Settings, error)
}

// newApp wires a session for the workspace at root.
func (o *rootOptions) newApp(cmd *cobra.Command, root string, notifier domain.Notifier) (*app, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	settings, err := o.settings(cmd, abs)
	if err != nil {
		return nil, err
	}

	logger := o.logger(cmd, "session")
	store, err := cache.New(settings.MaxTrackedSubjects, o.logger(cmd, "cache"))
	if err != nil {
		return nil, fmt.Errorf("creating diagnostic store: %w", err)
	}
	runner := invoker.New(o.logger(cmd, "invoker"))

	session, err := application.NewSession(settings, application.Deps{
		Runner:   runner,
		Store:    store,
		History:  history.New(runner),
		Notifier: notifier,
		Git:      gitinfo.New(),
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	settingsFile := filepath.Join(abs, config.FileName)
	if o.settingsFile != "" {
		if settingsFile, err = filepath.Abs(o.settingsFile); err != nil {
			return nil, fmt.Errorf("resolving path: %w", err)
		}
	}

	return &app{
		session:      session,
		store:        store,
		settings:     settings,
		root:         abs,
		logger:       logger,
		settingsFile: settingsFile,
		reload:       func() (domain.Settings, error) { return o.settings(cmd, abs) },
	}, nil
}

// reloadSettings applies an edited settings file to the running session.
// Invalid edits are reported and the previous settings stay in effect.
func (a *app) reloadSettings() {
	s, err := a.reload()
	if err == nil {
		err = a.session.UpdateSettings(s)
	}
	if err != nil {
		a.logger.Printf("warn: keeping previous settings: %v", err)
		return
	}
	a.logger.Printf("reloaded %s", a.settingsFile)
}
