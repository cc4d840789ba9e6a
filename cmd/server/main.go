package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/board-sync/internal/config"
	"github.com/DoyleJ11/board-sync/internal/httpapi"
	"github.com/DoyleJ11/board-sync/internal/hub"
	"github.com/DoyleJ11/board-sync/internal/logging"
	"github.com/DoyleJ11/board-sync/internal/persist"
	"github.com/DoyleJ11/board-sync/internal/state"
	"github.com/DoyleJ11/board-sync/internal/translate"
	"github.com/DoyleJ11/board-sync/internal/ws"
)

func main() {
	cfg := config.Load()

	log, err := logging.New(cfg.Development(), cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := persist.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer storage.Close()

	initial := persist.LoadOrSeed(ctx, storage, log)
	scheduler := persist.NewScheduler(storage, cfg.SaveDebounce, log)
	store := state.New(initial, scheduler, state.WithLogger(log))

	// the hub outlives ctx so shutdown can be ordered below
	h := hub.New(context.Background(), store, log)

	var model translate.Model
	if cfg.OpenAIKey != "" {
		var opts []option.RequestOption
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
		}
		model = translate.NewOpenAIModel(cfg.OpenAIKey, cfg.OpenAIModel, opts...)
	} else {
		log.Warn("OPENAI_API_KEY not set, translation disabled")
	}
	translator := translate.NewService(model, translate.WithLogger(log))

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Hub:        h,
			State:      store,
			Translator: translator,
			Log:        log,
			WS:         ws.Options{OriginPatterns: cfg.AllowedOrigins},
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening",
			zap.String("addr", cfg.Addr),
			zap.String("storage", cfg.Storage.Backend),
			zap.Bool("translation", model != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// websocket sessions are hijacked and not tracked by Shutdown;
		// stopping the hub closes them.
		h.Send(hub.Shutdown{})
		<-h.Done()
		err := srv.Shutdown(shutdownCtx)

		if ferr := scheduler.Flush(shutdownCtx); ferr != nil {
			log.Error("final save failed", zap.Error(ferr))
		}
		log.Info("shut down", zap.Int64("saves", scheduler.Saves()))
		return err
	})
	return g.Wait()
}
