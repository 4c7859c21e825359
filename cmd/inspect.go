// Package cmd implements the command-line interface for vidsan.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/muesli/reflow/wrap"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vidsan-cli/vidsan/color"
	"github.com/vidsan-cli/vidsan/icon"
	"github.com/vidsan-cli/vidsan/locator"
	"github.com/vidsan-cli/vidsan/network"
	"github.com/vidsan-cli/vidsan/playback"
	"github.com/vidsan-cli/vidsan/style"
	"github.com/vidsan-cli/vidsan/util"
)

// inspectOutput is the machine-readable form of an inspection.
type inspectOutput struct {
	Media        *playback.MediaDescriptor `json:"media"`
	Candidates   []playback.Candidate      `json:"candidates"`
	RangeSupport string                    `json:"rangeSupport,omitempty"`
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	inspectCmd.Flags().Bool("json-schema", false, "Print the JSON schema of the inspection output and exit")
	inspectCmd.Flags().BoolP("probe", "p", false, "Probe the direct URL for byte-range support")

	inspectCmd.SetOut(os.Stdout)
}

// inspectCmd runs the resolve cycle without playback and reports what the
// engine would do.
var inspectCmd = &cobra.Command{
	Use:   "inspect <locator>",
	Short: "Run the resolve cycle without playback and report the resulting plan",
	Long: `Classify a media locator, resolve it against the configured endpoints, and
display the media descriptor and the fallback chain that playback would
attempt, without starting a player.`,
	Args:    cobra.MaximumNArgs(1),
	Example: "  vidsan inspect https://mega.nz/file/abc --json",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("json-schema")) {
			reflector := new(jsonschema.Reflector)
			reflector.Anonymous = true
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(reflector.Reflect(&inspectOutput{})))
			return
		}

		if len(args) == 0 {
			handleErr(errors.New("a media locator argument is required"))
		}

		ctx := context.Background()

		media, err := newPipeline().Describe(ctx, args[0])
		handleErr(err)

		output := inspectOutput{
			Media:      media,
			Candidates: playback.Candidates(media, configuredProxy()),
		}

		if lo.Must(cmd.Flags().GetBool("probe")) && media.Kind == locator.KindURL {
			output.RangeSupport = playback.ProbeRange(ctx, network.BrowserClient, media.DirectURL).String()
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(output))
			return
		}

		printInspection(cmd, output)
	},
}

func printInspection(cmd *cobra.Command, output inspectOutput) {
	var (
		label = style.Fg(color.Blue)
		faint = style.Faint
		media = output.Media
	)

	row := func(name, value string) {
		cmd.Printf("%s %s\n", label(name+":"), value)
	}

	row("Title", style.Bold(media.Title))
	row("Kind", media.Kind.String())
	row("Provider", string(media.Provider))
	row("Id", faint(media.ID))

	if media.Kind == locator.KindTorrent {
		return
	}

	row("Direct", media.DirectURL)
	if media.PlayURL != media.DirectURL {
		row("Play", media.PlayURL)
	}

	if advice, ok := media.Advice.Get(); ok {
		verdict := style.Fg(color.Green)("playable")
		if !advice.CanPlay {
			verdict = style.Fg(color.Red)("likely unplayable")
		}
		row("Codec", fmt.Sprintf("%s/%s %s", advice.Container, advice.Codec, faint(verdict)))
	}

	if meta, ok := media.Metadata.Get(); ok && meta.Size > 0 {
		row("Size", fmt.Sprintf("%d bytes", meta.Size))
	}

	if output.RangeSupport != "" {
		row("Range", output.RangeSupport)
	}

	cmd.Println()
	cmd.Println(label("Fallback chain:"))
	for i, candidate := range output.Candidates {
		cmd.Printf("  %d. %s %s\n", i+1, candidate.URL, faint(string(candidate.Label)))
	}

	if media.Warning != "" {
		width, _, err := util.TerminalSize()
		if err != nil || width <= 0 {
			width = 80
		}
		cmd.Println()
		cmd.Println(wrap.String(fmt.Sprintf("%s %s", icon.Get(icon.Warning), media.Warning), width))
	}
}
