package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jmoon-dev/matchd/params"
	"github.com/jmoon-dev/matchd/pkg/api"
	"github.com/jmoon-dev/matchd/pkg/engine"
	"github.com/jmoon-dev/matchd/pkg/lob"
	"github.com/jmoon-dev/matchd/pkg/storage"
	"github.com/jmoon-dev/matchd/pkg/util"
)

func main() {
	cfg := params.LoadFromEnv("") // "" means load .env from the current directory

	logger, err := util.NewLogger(cfg.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.LogFile)

	// ---- Trade journal ----
	journal, err := storage.OpenJournal(cfg.Storage.JournalDir)
	if err != nil {
		sugar.Fatalw("journal_open_failed", "dir", cfg.Storage.JournalDir, "err", err)
	}
	defer journal.Close()
	sugar.Infow("journal_opened", "dir", cfg.Storage.JournalDir, "last_seq", journal.LastSeq())

	// ---- Engine ----
	// One sequencer injected into every book: order IDs are unique
	// across all listed markets.
	eng := engine.New(lob.NewSequencer(), journal, sugar)
	for _, entry := range cfg.Markets {
		m, err := parseMarket(entry)
		if err != nil {
			sugar.Fatalw("bad_market_config", "entry", entry, "err", err)
		}
		if err := eng.RegisterMarket(m); err != nil {
			sugar.Fatalw("market_registration_failed", "entry", entry, "err", err)
		}
	}

	// ---- API ----
	server := api.NewServer(eng, sugar)
	eng.SetPublisher(server)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: server.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		server.Hub().Run(ctx)
		return nil
	})

	g.Go(func() error {
		sugar.Infow("http_listening", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("server_exited", "err", err)
	}
	sugar.Info("bye")
}

// parseMarket parses a SYMBOL:BASE:QUOTE config entry.
func parseMarket(entry string) (*engine.Market, error) {
	parts := strings.Split(entry, ":")
	if len(parts) != 3 {
		return nil, errors.New("want SYMBOL:BASE:QUOTE")
	}
	return engine.NewMarket(parts[0], parts[1], parts[2]), nil
}
