package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/tomatod/internal/config"
	"github.com/sandeepkv93/tomatod/internal/dates"
	"github.com/sandeepkv93/tomatod/internal/planner"
	"github.com/sandeepkv93/tomatod/internal/reload"
	"github.com/sandeepkv93/tomatod/internal/storage"
	"github.com/sandeepkv93/tomatod/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tomatod failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv(config.Default())

	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	logger, closeLog := openLog(cfg.DBPath + ".log")
	defer closeLog()

	p := planner.New(repo, planner.WithLogger(logger))
	program := tea.NewProgram(update.NewModel(p, cfg), tea.WithAltScreen())

	// the model reloads today on start; the ticker only reacts to later days
	trigger := &reload.Trigger{}
	trigger.Mark(p.Today())
	ticker := reload.NewTicker(time.Local, trigger)
	if err := ticker.Schedule(cfg.ReloadInterval(), func(day dates.Date) {
		logger.Printf("tomatod: new day %s, reloading", day)
		program.Send(update.ReloadMsg{Day: day})
	}); err != nil {
		return err
	}
	ticker.Start()
	defer ticker.Stop()

	_, err = program.Run()
	return err
}

// openLog points the standard logger at path. The UI owns the terminal, so
// when the file cannot be opened logs are discarded rather than written to
// stderr.
func openLog(path string) (*log.Logger, func()) {
	f, err := tea.LogToFile(path, "tomatod")
	if err != nil {
		return log.New(io.Discard, "", 0), func() {}
	}
	return log.Default(), func() { _ = f.Close() }
}
