package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"znkr.io/conflicts/reporter/logging"
	"znkr.io/conflicts/reporter/report"
	"znkr.io/conflicts/reporter/server"
	"znkr.io/conflicts/reporter/site"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		flags reportFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve [DIR]",
		Short: "Serves the conflict report for DIR and updates it whenever a file changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(cmd, a.cfg)
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			dir, err := filepath.Abs(a.dir(args))
			if err != nil {
				return fmt.Errorf("determining directory: %v", err)
			}
			ctx := cmd.Context()
			logger := logging.Component(a.logger, "serve")

			s, err := a.site(ctx, dir)
			if err != nil {
				return err
			}

			// Start serving.
			srv, err := server.Run(a.cfg.Server.Addr, s, logging.Component(a.logger, "server"))
			if err != nil {
				return err
			}
			defer srv.Shutdown(context.Background())
			logger.Info().Str("addr", srv.Addr().String()).Msg("Now serving, press Ctrl-C to shut down")

			// Setup file watcher to rebuild the report should anything change on disk.
			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("starting watcher: %v", err)
			}
			defer watcher.Close()
			if err := watchDir(watcher, dir); err != nil {
				return fmt.Errorf("starting watch: %v", err)
			}
			logger.Debug().Int("dirs", len(watcher.WatchList())).Msg("Watching")

			for {
				select {
				case event := <-watcher.Events:
					// Absolutely no need to react to chmod.
					if event.Has(fsnotify.Chmod) || a.isLogFile(event.Name) {
						continue
					}

					// Update watch list should new directories be added or removed.
					switch stat, err := os.Stat(event.Name); {
					case os.IsNotExist(err) && (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)):
						if slices.Contains(watcher.WatchList(), event.Name) {
							watcher.Remove(event.Name)
							wd, _ := filepath.Rel(dir, event.Name)
							logger.Debug().Str("dir", wd).Msg("Removed watch directory")
						}
					case err == nil && event.Has(fsnotify.Create) && stat.IsDir():
						if err := watchDir(watcher, event.Name); err != nil {
							return fmt.Errorf("adding watch: %v", err)
						}
						wd, _ := filepath.Rel(dir, event.Name)
						logger.Debug().Str("dir", wd).Msg("Added watch directory")
					case err != nil && !os.IsNotExist(err):
						return fmt.Errorf("watching directory: %v", err)
					}

					s, err := a.site(ctx, dir)
					if err != nil {
						logger.Error().Err(err).Msg("Failed to update report")
						continue
					}
					srv.ReplaceSite(s)
				case err := <-watcher.Errors:
					return fmt.Errorf("watching: %v", err)
				case err := <-srv.Error():
					return fmt.Errorf("serving: %v", err)
				case <-ctx.Done():
					fmt.Fprint(os.Stderr, "\r") // remove Ctrl-C output characters
					logger.Info().Msg("Received Ctrl-C, shutting down")
					return nil
				}
			}
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "address to serve at")
	return cmd
}

func (a *app) site(ctx context.Context, dir string) (*site.Site, error) {
	r, err := a.build(ctx, dir)
	if err != nil {
		return nil, err
	}
	return report.NewSite(r, report.SiteOptions{BaseURL: a.cfg.Report.BaseURL})
}

// isLogFile reports whether name is the log file or one of its rotated backups. Writing the log
// must not trigger another rebuild.
func (a *app) isLogFile(name string) bool {
	if a.cfg.Log.File == "" {
		return false
	}
	logFile, err := filepath.Abs(a.cfg.Log.File)
	if err != nil {
		return false
	}
	if filepath.Dir(name) != filepath.Dir(logFile) {
		return false
	}
	base, ext := filepath.Base(name), filepath.Ext(logFile)
	if base == filepath.Base(logFile) {
		return true
	}
	// Backups are named <stem>-<timestamp><ext>, optionally gzipped.
	stem := strings.TrimSuffix(filepath.Base(logFile), ext)
	rest, ok := strings.CutPrefix(base, stem+"-")
	return ok && (strings.HasSuffix(rest, ext) || strings.HasSuffix(rest, ext+".gz"))
}

func watchDir(watcher *fsnotify.Watcher, dir string) error {
	walkfn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories, like .stversions
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if err := watcher.Add(path); err != nil {
				return err
			}
		}
		return nil
	}
	return filepath.WalkDir(dir, walkfn)
}
