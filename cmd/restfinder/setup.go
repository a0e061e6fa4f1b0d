package main

import (
	"errors"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rendis/restfinder/internal/config"
	"github.com/rendis/restfinder/internal/engine/api"
	"github.com/rendis/restfinder/internal/engine/history"
	"github.com/rendis/restfinder/internal/engine/session"
	"github.com/rendis/restfinder/internal/engine/storage"
	"github.com/rendis/restfinder/internal/engine/taxonomy"
	"github.com/rendis/restfinder/internal/logging"
)

// globalOptions are the persistent flags. They override every other
// configuration source, but only when set on the command line.
type globalOptions struct {
	configPath  string
	apiURL      string
	perPage     int
	timeout     config.Duration
	fingerprint string
	proxy       string
	historyPath string
	archivePath string
	logPath     string
	debug       bool
}

func (o *globalOptions) register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.configPath, "config", "", "config file (default <config dir>/restfinder/config.toml)")
	f.StringVar(&o.apiURL, "api-url", "", "search service base URL")
	f.IntVar(&o.perPage, "per-page", 0, "results per page")
	f.Var(&durationFlag{&o.timeout}, "timeout", "request timeout, e.g. 30s")
	f.StringVar(&o.fingerprint, "fingerprint", "", "TLS fingerprint: chrome or none")
	f.StringVar(&o.proxy, "proxy", "", "HTTP/SOCKS5 proxy URL")
	f.StringVar(&o.historyPath, "history", "", "search history file")
	f.StringVar(&o.archivePath, "archive", "", "SQLite results archive (enables archiving)")
	f.StringVar(&o.logPath, "log-file", "", "log file for the interactive interface")
	f.BoolVar(&o.debug, "debug", false, "debug logging")
}

func (o *globalOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("api-url") {
		cfg.APIURL = o.apiURL
	}
	if f.Changed("per-page") {
		cfg.PerPage = o.perPage
	}
	if f.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if f.Changed("fingerprint") {
		cfg.Fingerprint = o.fingerprint
	}
	if f.Changed("proxy") {
		cfg.Proxy = o.proxy
	}
	if f.Changed("history") {
		cfg.HistoryPath = o.historyPath
	}
	if f.Changed("archive") {
		cfg.ArchivePath = o.archivePath
	}
	if f.Changed("log-file") {
		cfg.LogPath = o.logPath
	}
	if f.Changed("debug") {
		cfg.Debug = o.debug
	}
}

// durationFlag lets config.Duration be set from the command line.
type durationFlag struct {
	d *config.Duration
}

var _ pflag.Value = (*durationFlag)(nil)

func (f *durationFlag) String() string {
	if f.d == nil || f.d.Duration == 0 {
		return ""
	}
	return f.d.String()
}

func (f *durationFlag) Set(s string) error {
	return f.d.UnmarshalText([]byte(s))
}

func (f *durationFlag) Type() string {
	return "duration"
}

// appEnv holds the wired components for one command run.
type appEnv struct {
	cfg     *config.Config
	log     zerolog.Logger
	client  *api.Client
	history *history.Store
	archive *storage.Archive
	closers []io.Closer
}

// setup resolves configuration and builds the components. The interactive
// interface logs to a file; headless commands log to stderr.
func setup(cmd *cobra.Command, opts *globalOptions, headless bool) (*appEnv, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	opts.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	env := &appEnv{cfg: cfg}
	if headless {
		env.log = logging.Console(cfg.Debug)
	} else {
		logger, closer, err := logging.Open(cfg.LogPath, cfg.Debug)
		if err != nil {
			return nil, err
		}
		env.log = logger
		env.closers = append(env.closers, closer)
	}

	env.client = api.NewClient(api.Options{
		BaseURL:     cfg.APIURL,
		PerPage:     cfg.PerPage,
		Timeout:     cfg.Timeout.Duration,
		Fingerprint: cfg.Fingerprint,
		ProxyURL:    cfg.Proxy,
		Logger:      env.log,
	})
	env.history = history.Open(cfg.HistoryPath, env.log)

	if cfg.ArchiveEnabled() {
		archive, err := storage.NewArchive(cfg.ArchivePath)
		if err != nil {
			// The archive is optional; searching still works without it.
			env.log.Warn().Err(err).Str("path", cfg.ArchivePath).Msg("results archive disabled")
		} else {
			env.archive = archive
			env.closers = append(env.closers, archive)
		}
	}

	return env, nil
}

func (e *appEnv) controller() *session.Controller {
	opts := session.Options{
		History: e.history,
		Logger:  e.log,
	}
	// A nil *storage.Archive must not end up as a non-nil interface.
	if e.archive != nil {
		opts.Archive = e.archive
	}
	return session.New(e.client, opts)
}

func (e *appEnv) taxonomy() *taxonomy.Loader {
	return taxonomy.NewLoader(e.client, e.log)
}

func (e *appEnv) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
