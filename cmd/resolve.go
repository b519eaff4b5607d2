package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"reelfetch/internal/media"
	"reelfetch/internal/ui"
)

var (
	flagType    string
	flagSeason  int
	flagEpisode int
	flagJSON    bool
)

var errNoStreams = errors.New("no streams found")

var resolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Resolve a movie or episode to playable streams",
	Example: `  reelfetch resolve 603
  reelfetch resolve 1399 --type tv --season 1 --episode 2 --json`,
	Args: cobra.ExactArgs(1),
	RunE: resolveRun,
}

func init() {
	resolveCmd.Flags().StringVarP(&flagType, "type", "t", "movie", "Media type: movie | tv")
	resolveCmd.Flags().IntVarP(&flagSeason, "season", "s", 0, "Season number (tv only)")
	resolveCmd.Flags().IntVarP(&flagEpisode, "episode", "e", 0, "Episode number (tv only)")
	resolveCmd.Flags().BoolVarP(&flagJSON, "json", "j", false, "Output streams as JSON")
}

func resolveRun(cmd *cobra.Command, args []string) error {
	req, err := requestFromFlags(cmd, args[0])
	if err != nil {
		return err
	}

	p, err := newPipeline()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	interactive := !flagJSON && term.IsTerminal(int(os.Stdout.Fd()))
	var streams []media.StreamDescriptor
	if interactive {
		streams, err = ui.WithSpinner(ctx, os.Stdin, os.Stderr, "Resolving "+req.String(), func(ctx context.Context) ([]media.StreamDescriptor, error) {
			return p.Resolve(ctx, req)
		})
	} else {
		streams, err = p.Resolve(ctx, req)
	}
	if err != nil {
		return err
	}
	if len(streams) == 0 {
		return fmt.Errorf("%s: %w", req, errNoStreams)
	}

	if !interactive {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(streams)
	}
	ui.RenderStreams(cmd.OutOrStdout(), req, streams)
	return nil
}

// requestFromFlags builds the media request; season and episode count only
// when the user set them.
func requestFromFlags(cmd *cobra.Command, id string) (media.Request, error) {
	kind, err := media.ParseKind(flagType)
	if err != nil {
		return media.Request{}, err
	}

	season, episode := mo.None[int](), mo.None[int]()
	if cmd.Flags().Changed("season") {
		season = mo.Some(flagSeason)
	}
	if cmd.Flags().Changed("episode") {
		episode = mo.Some(flagEpisode)
	}
	return media.NewRequest(id, kind, season, episode)
}
