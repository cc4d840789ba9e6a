package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/DoyleJ11/board-sync/internal/board"
	"github.com/DoyleJ11/board-sync/internal/client"
	"github.com/DoyleJ11/board-sync/pkg/types"
)

const syncTimeout = 10 * time.Second

var errNoSync = errors.New("server did not answer in time")

// withBoard connects, waits for the first sync, runs edit, then waits until
// the server echoes a board with the edited content. A nil edit returns the
// first synced board.
func withBoard(ctx context.Context, g *globals, edit func(ctx context.Context, rec *client.Reconciler) error) (types.Board, error) {
	endpoint, err := wsURL(g.server)
	if err != nil {
		return types.Board{}, err
	}
	log := g.logger()

	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	session := client.NewSession(endpoint, client.WithSessionLogger(log))
	rec := client.NewReconciler(session, nil, client.WithReconcilerLogger(log))

	syncs := make(chan types.Board, 16)
	go func() {
		_ = session.Run(ctx, func(b types.Board) {
			rec.HandleSync(b)
			select {
			case syncs <- b:
			default:
			}
		})
	}()

	select {
	case <-syncs:
	case <-ctx.Done():
		return types.Board{}, errNoSync
	}

	if edit == nil {
		return rec.Board(), nil
	}
	if err := edit(ctx, rec); err != nil {
		return types.Board{}, err
	}

	want := board.Signature(rec.Board())
	for {
		select {
		case b := <-syncs:
			if board.Signature(b) == want {
				return b, nil
			}
		case <-ctx.Done():
			return types.Board{}, errNoSync
		}
	}
}

func editCmd(g *globals, use, short string, nargs int, edit func(ctx context.Context, rec *client.Reconciler, args []string) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			var msg string
			_, err := withBoard(cmd.Context(), g, func(ctx context.Context, rec *client.Reconciler) error {
				var err error
				msg, err = edit(ctx, rec, args)
				return err
			})
			if err != nil {
				return err
			}
			if msg != "" {
				fmt.Fprintln(cmd.OutOrStdout(), msg)
			}
			return nil
		},
	}
}

func addSectionCmd(g *globals) *cobra.Command {
	return editCmd(g, "add-section <title>", "Append a section", 1,
		func(ctx context.Context, rec *client.Reconciler, args []string) (string, error) {
			return rec.AddSection(ctx, args[0])
		})
}

func addTaskCmd(g *globals) *cobra.Command {
	return editCmd(g, "add-task <section-id> <text>", "Append a task to a section", 2,
		func(ctx context.Context, rec *client.Reconciler, args []string) (string, error) {
			return rec.AddTask(ctx, args[0], args[1])
		})
}

func toggleCmd(g *globals) *cobra.Command {
	return editCmd(g, "toggle <section-id> <task-id>", "Flip a task's done flag", 2,
		func(ctx context.Context, rec *client.Reconciler, args []string) (string, error) {
			return "", rec.ToggleDone(ctx, args[0], args[1])
		})
}

func starCmd(g *globals) *cobra.Command {
	return editCmd(g, "star <section-id> <task-id>", "Flip a task's priority star", 2,
		func(ctx context.Context, rec *client.Reconciler, args []string) (string, error) {
			return "", rec.ToggleStar(ctx, args[0], args[1])
		})
}

func rmTaskCmd(g *globals) *cobra.Command {
	return editCmd(g, "rm-task <section-id> <task-id>", "Delete a task", 2,
		func(ctx context.Context, rec *client.Reconciler, args []string) (string, error) {
			return "", rec.RemoveTask(ctx, args[0], args[1])
		})
}

func rmSectionCmd(g *globals) *cobra.Command {
	return editCmd(g, "rm-section <section-id>", "Delete a section and its tasks", 1,
		func(ctx context.Context, rec *client.Reconciler, args []string) (string, error) {
			return "", rec.RemoveSection(ctx, args[0])
		})
}

func translateCmd(g *globals) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Print the board translated once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := withBoard(cmd.Context(), g, nil)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			resp, err := client.NewHTTPTranslator(g.server).Translate(ctx, types.TranslationSource(current, lang))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderBoard(current, responseOverlay(resp), false))
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "Polish", "Target language")
	return cmd
}

// responseOverlay serves a single translation response as display text.
type responseOverlay types.TranslateResponse

func (r responseOverlay) SectionTitle(s types.Section) string {
	for _, ts := range r.Sections {
		if ts.ID == s.ID && ts.Title != "" {
			return ts.Title
		}
	}
	return s.Title
}

func (r responseOverlay) TaskText(sectionID string, t types.Task) string {
	for _, ts := range r.Sections {
		if ts.ID != sectionID {
			continue
		}
		for _, tt := range ts.Tasks {
			if tt.ID == t.ID && tt.Text != "" {
				return tt.Text
			}
		}
	}
	return t.Text
}
