package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DoyleJ11/board-sync/internal/client"
	"github.com/DoyleJ11/board-sync/pkg/types"
)

func watchCmd(g *globals) *cobra.Command {
	var (
		lang    string
		showIDs bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show the board and redraw it on every change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx, g, lang, showIDs)
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "Overlay a translation, e.g. Polish")
	cmd.Flags().BoolVar(&showIDs, "ids", false, "Show section and task ids")
	return cmd
}

func watch(ctx context.Context, g *globals, lang string, showIDs bool) error {
	endpoint, err := wsURL(g.server)
	if err != nil {
		return err
	}
	log := g.logger()

	var (
		mu      sync.Mutex
		current types.Board
		status  = client.Connecting
		overlay Overlay
	)
	draw := func() {
		mu.Lock()
		defer mu.Unlock()
		fmt.Print("\033[H\033[2J")
		fmt.Println(dimStyle.Render(status.String()))
		fmt.Print(renderBoard(current, overlay, showIDs))
	}

	var cache *client.TranslationCache
	if lang != "" {
		cache = client.NewTranslationCache(client.NewHTTPTranslator(g.server),
			client.WithCacheLogger(log),
			client.WithApplied(draw),
			client.WithNotice(func(n string) { fmt.Fprintln(os.Stderr, n) }),
		)
		overlay = cache
	}

	session := client.NewSession(endpoint,
		client.WithSessionLogger(log),
		client.WithStatus(func(s client.Status) {
			mu.Lock()
			status = s
			mu.Unlock()
			draw()
		}),
	)
	rec := client.NewReconciler(session, func(b types.Board) {
		mu.Lock()
		current = b
		mu.Unlock()
		draw()
	}, client.WithReconcilerLogger(log))

	if cache != nil {
		cache.Enable(lang, rec.Board())
		rec.OnContentChange(cache.ContentChanged)
		defer cache.Disable()
	}

	err = session.Run(ctx, func(b types.Board) { rec.HandleSync(b) })
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
