// Package cmd implements the command-line interface for vidsan.
package cmd

import (
	"os"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vidsan-cli/vidsan/color"
	"github.com/vidsan-cli/vidsan/icon"
	"github.com/vidsan-cli/vidsan/provider"
	"github.com/vidsan-cli/vidsan/style"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

// sourcesCmd provides a parent command for inspecting supported hosting providers.
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect the supported file-hosting providers",
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)

	sourcesListCmd.Flags().BoolP("raw", "r", false, "Suppress header and hostname patterns in the output")
	sourcesListCmd.Flags().BoolP("resolve-only", "R", false, "Display only providers that require the resolve endpoint")
	sourcesListCmd.Flags().StringP("filter", "f", "", "Fuzzy-filter providers by name")

	sourcesListCmd.SetOut(os.Stdout)
}

// sourcesListCmd displays the ordered provider detection table.
var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Display the ordered provider detection table",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			raw         = lo.Must(cmd.Flags().GetBool("raw"))
			resolveOnly = lo.Must(cmd.Flags().GetBool("resolve-only"))
			filter      = lo.Must(cmd.Flags().GetString("filter"))
		)

		rules := provider.Rules()

		if resolveOnly {
			rules = lo.Filter(rules, func(rule provider.Rule, _ int) bool {
				return rule.NeedsResolve
			})
		}

		if filter != "" {
			rules = lo.Filter(rules, func(rule provider.Rule, _ int) bool {
				return fuzzy.MatchFold(filter, string(rule.Tag))
			})
		}

		if !raw {
			cmd.Println(style.New().Foreground(color.HiBlue).Bold(true).Render("Providers:"))
		}

		for _, rule := range rules {
			if raw {
				cmd.Println(string(rule.Tag))
				continue
			}

			marker := " "
			if rule.NeedsResolve {
				marker = icon.Get(icon.Link)
			}

			cmd.Printf(
				"%s %s %s\n",
				marker,
				style.Bold(string(rule.Tag)),
				style.Faint(strings.Join(rule.Hosts, ", ")),
			)
		}

		if !raw {
			cmd.Println()
			cmd.Printf("%s marks providers resolved through the external resolve endpoint\n", icon.Get(icon.Link))
		}
	},
}
