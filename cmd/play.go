// Package cmd implements the command-line interface for vidsan.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/muesli/reflow/wrap"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vidsan-cli/vidsan/icon"
	"github.com/vidsan-cli/vidsan/key"
	"github.com/vidsan-cli/vidsan/locator"
	"github.com/vidsan-cli/vidsan/log"
	"github.com/vidsan-cli/vidsan/metadata"
	"github.com/vidsan-cli/vidsan/network"
	"github.com/vidsan-cli/vidsan/playback"
	"github.com/vidsan-cli/vidsan/player"
	"github.com/vidsan-cli/vidsan/resolver"
	"github.com/vidsan-cli/vidsan/style"
	"github.com/vidsan-cli/vidsan/util"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Float64P("start", "s", 0, "Seek to this absolute position (seconds) once playback is ready")
	playCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompts for suspect codecs")
	playCmd.Flags().StringP("player", "p", "", "Playback backend to use (mpv, iina)")
	lo.Must0(viper.BindPFlag(key.Player, playCmd.Flags().Lookup("player")))
}

// newPipeline assembles the resolve pipeline from the configured endpoints.
func newPipeline() *playback.Pipeline {
	var meta playback.MetadataService
	if viper.GetBool(key.MetadataFetchRemote) {
		meta = metadata.NewService(metadata.NewStore())
	}

	return playback.NewPipeline(
		resolver.New(viper.GetString(key.ResolverEndpoint)),
		meta,
		player.Capabilities{},
		configuredProxy(),
	)
}

func configuredProxy() playback.Proxy {
	return playback.NewProxy(viper.GetString(key.ProxyEndpoint))
}

// playCmd resolves a media locator and plays it through the fallback chain.
var playCmd = &cobra.Command{
	Use:   "play <locator>",
	Short: "Resolve a media locator and play it",
	Long: `Resolve a media locator (a direct link, a file-host page, or a torrent
identifier) into a playable source and play it, degrading gracefully across
a fallback chain of candidate URLs.`,
	Args:    cobra.ExactArgs(1),
	Example: "  vidsan play https://pixeldrain.com/u/a1b2c3\n  vidsan play https://cdn.example.com/video.mp4 --start 300",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		media, err := newPipeline().Describe(ctx, args[0])
		handleErr(err)

		if media.Kind == locator.KindTorrent {
			fmt.Printf(
				"%s %s is a torrent; hand it to your torrent engine, then play the streamed file directly\n",
				icon.Get(icon.Link),
				style.Bold(media.Title),
			)
			return
		}

		if media.Warning != "" && !lo.Must(cmd.Flags().GetBool("yes")) {
			if !confirmSuspectSource(media.Warning) {
				return
			}
		}

		headers := map[string]string{}
		if result, ok := media.Resolution.Get(); ok {
			headers = result.PlaybackHeaders()
		}

		playerName := viper.GetString(key.Player)
		handleErr(validatePlayerName(playerName))

		backend := player.New(playerName)
		start := lo.Must(cmd.Flags().GetFloat64("start"))

		if mpv, ok := backend.(*player.MPV); ok {
			CheckDependencies()
			playThroughChain(ctx, mpv, media, headers, start)
			return
		}

		// Backends without IPC get the strategy-selected URL only.
		handleErr(backend.Play(media.PlayURL, media.Title, headers))
		fmt.Printf("%s playing %s\n", icon.Get(icon.Play), style.Bold(media.Title))
		<-backend.Wait()
	},
}

// playThroughChain drives the full fallback chain against an mpv sink and
// applies the post-load range probe and safe seek.
func playThroughChain(ctx context.Context, mpv *player.MPV, media *playback.MediaDescriptor, headers map[string]string, start float64) {
	erase := util.PrintErasable(fmt.Sprintf("%s Starting mpv...", icon.Get(icon.Progress)))
	err := mpv.Start(media.Title)
	erase()
	handleErr(err)
	defer util.Ignore(mpv.Close)

	if len(headers) > 0 {
		handleErr(mpv.SetHeaders(headers))
	}

	sink, err := player.NewMPVSink(mpv)
	handleErr(err)
	defer sink.Detach()

	loadTimeout := time.Duration(viper.GetInt(key.PlayerLoadTimeout)) * time.Second
	engine := playback.NewEngine(sink, configuredProxy(), loadTimeout)

	outcome := engine.Run(ctx, media)
	if !outcome.Success {
		handleErr(errors.New(outcome.Error))
	}

	fmt.Printf(
		"%s playing %s %s\n",
		icon.Get(icon.Play),
		style.Bold(media.Title),
		style.Faint(fmt.Sprintf("(%s, candidate %d)", outcome.Label, outcome.TriedIndex+1)),
	)

	rng := playback.ProbeRange(ctx, network.BrowserClient, outcome.UsedURL)
	log.Debugf("play: range support %s for %s", rng, outcome.UsedURL)

	if start > 0 {
		guard := playback.NewSeekGuard(sink, rng)
		if err := guard.Seek(ctx, start); err != nil {
			if errors.Is(err, playback.ErrSeekUnsupported) {
				fmt.Printf("%s %s\n", icon.Get(icon.Warning), err)
			} else {
				handleErr(err)
			}
		}
	}

	<-mpv.Wait()
}

var knownPlayers = []string{"mpv", "iina"}

func validatePlayerName(name string) error {
	if name == "" || lo.Contains(knownPlayers, strings.ToLower(name)) {
		return nil
	}

	closest := lo.MinBy(knownPlayers, func(a string, b string) bool {
		return levenshtein.Distance(name, a) < levenshtein.Distance(name, b)
	})
	return fmt.Errorf("unknown player %s, did you mean %s?", name, closest)
}

// confirmSuspectSource surfaces the advisor's warning and asks before
// attempting playback anyway.
func confirmSuspectSource(warning string) bool {
	width, _, err := util.TerminalSize()
	if err != nil || width <= 0 {
		width = 80
	}
	fmt.Println(wrap.String(fmt.Sprintf("%s %s", icon.Get(icon.Warning), warning), width))

	confirm := survey.Confirm{
		Message: "Attempt playback anyway?",
		Default: true,
	}
	var proceed bool
	handleErr(survey.AskOne(&confirm, &proceed))
	return proceed
}
