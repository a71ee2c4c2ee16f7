package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/flashiz/internal/app"
	"github.com/abhisek/flashiz/internal/i18n"
	"github.com/abhisek/flashiz/internal/media"
	"github.com/abhisek/flashiz/internal/render"
	"github.com/abhisek/flashiz/internal/session"
	"github.com/abhisek/flashiz/internal/syncstatus"
)

// runApp opens the collection, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	tr, err := i18n.New(e.cfg.Locale)
	if err != nil {
		e.log.Warn("falling back to English messages", "locale", e.cfg.Locale, "error", err)
		tr = i18n.Must("en")
	}

	mediaDir := e.cfg.MediaDir(e.dbPath)
	opts := app.Options{
		Collection: e.coll,
		Settings:   e.store,
		Checker:    syncstatus.LocalChecker{Settings: e.store, Username: e.cfg.Sync.Username},
		NewPlayer: func() media.Player {
			if len(e.cfg.Media.Player) == 0 {
				return media.Nop{}
			}
			return media.NewCommandPlayer(e.cfg.Media.Player, mediaDir, e.log)
		},
		Renderer:   render.New(),
		Translator: tr,
		Session: session.Options{
			Autoplay:     e.cfg.Review.Autoplay,
			TagScanLimit: e.cfg.Review.TagScanLimit,
		},
		Logger: e.log,
	}

	e.log.Info("starting", "version", version, "db", e.dbPath)
	return app.Run(cmd.Context(), opts)
}
