package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AaronLay10/pointclick/internal/config"
	"github.com/AaronLay10/pointclick/internal/input"
	"github.com/AaronLay10/pointclick/internal/save"
	"github.com/AaronLay10/pointclick/internal/scene"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	Locale string
	Fresh  bool
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the configured game on the terminal",
		Long: `Play the game described by game.yaml. Choices are taken by number, puzzles are
driven with press/submit, and pointer events feed the gesture macros. Progress is saved
after every transition and restored on the next run.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Locale, "locale", "l", "", "text locale (defaults to game.locale)")
	cmd.Flags().BoolVar(&opts.Fresh, "fresh", false, "ignore any saved progress")

	return cmd
}

func runPlay(cmd *cobra.Command, rootOpts *RootOptions, opts *PlayOptions) error {
	ctx := cmd.Context()

	cfg, err := config.LoadGameConfig(rootOpts.Config)
	if err != nil {
		return err
	}
	graph, err := scene.LoadGraph(cfg.Game.Scenes)
	if err != nil {
		return err
	}

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	em := newEmitter(rootOpts, cmd.ErrOrStderr(), uuid.NewString(), b.sink)
	em.Info("system.startup", map[string]interface{}{
		"game_id": cfg.Game.ID,
		"backend": cfg.Storage.Backend,
	})
	defer em.Info("system.shutdown", map[string]interface{}{"game_id": cfg.Game.ID})

	persister := save.NewPersister(save.New(b.kv, em), save.SlotKey(cfg.Game.ID), cfg.Game.SaveVersion,
		rootOpts.Migrations.For(cfg.Game.ID))
	initial := scene.NewGameState(graph.StartScene())
	if !opts.Fresh {
		initial, _ = persister.Restore(ctx, initial)
	}
	if persister.Held() {
		fmt.Fprintf(cmd.OutOrStdout(), "saved progress in %s could not be upgraded to v%d; this session will not be saved\n\n",
			persister.Key(), cfg.Game.SaveVersion)
	}

	detector := input.NewDetector(input.Config{
		LongPress:       cfg.Input.LongPress(),
		SwipeThreshold:  cfg.Input.SwipeThreshold,
		DoubleTapWindow: cfg.Input.DoubleTap(),
		SequenceGap:     cfg.Input.SequenceGap(),
	}, input.WithEmitter(em))
	defer detector.Reset()
	for _, m := range cfg.Input.Macros {
		seq := make([]input.Token, len(m.Sequence))
		for i, t := range m.Sequence {
			seq[i] = input.Token(t)
			if !seq[i].Valid() {
				return fmt.Errorf("macro %q: unknown gesture %q", m.Name, t)
			}
		}
		detector.Register(input.Macro{Name: m.Name, Sequence: seq}, nil)
	}

	locale := opts.Locale
	if locale == "" {
		locale = cfg.Game.Locale
	}

	rt := scene.NewRuntime(graph, scene.WithSnapshotter(persister), scene.WithEmitter(em))
	sess := newSession(cmd.OutOrStdout(), locale, rt, detector, newPuzzleHost(cfg.Puzzles, em), em)

	if err := rt.Start(initial); err != nil {
		// A save pointing at a scene that no longer exists starts over.
		em.Error("system.error", err, map[string]interface{}{"scene_id": initial.Scene})
		if err := rt.Start(scene.NewGameState(graph.StartScene())); err != nil {
			return err
		}
	}

	return sess.run(cmd.InOrStdin())
}
