// Package cmd implements the command-line interface for vidra.
package cmd

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"

	"github.com/vidra-cli/vidra/filesystem"
	"github.com/vidra-cli/vidra/inline"
	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/query"
)

func init() {
	rootCmd.AddCommand(inlineCmd)

	inlineCmd.Flags().StringP("query", "q", "", "The search query to execute against the server library")
	inlineCmd.Flags().StringP("item", "i", "", "Criteria for selecting a specific item from the search results")
	inlineCmd.Flags().StringP("episodes", "e", "", "Criteria for selecting specific episodes from the chosen series")
	inlineCmd.Flags().BoolP("json", "j", false, "Format the command output as a JSON object")
	inlineCmd.Flags().BoolP("stream-urls", "U", false, "Resolve playable stream URLs for the selected items")
	inlineCmd.Flags().StringP("output", "o", "", "Specify a file path to write the command output")

	lo.Must0(inlineCmd.MarkFlagRequired("query"))

	inlineCmd.RegisterFlagCompletionFunc("query", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	})
}

// inlineCmd executes the application in non-interactive, scriptable inline mode.
var inlineCmd = &cobra.Command{
	Use:   "inline",
	Short: "Execute the application in non-interactive, scriptable inline mode",
	Long: `Query the server library for automated execution and data extraction.

Item selectors:
  first - first item in the results
  last - last item in the results
  exact - item whose name matches the query exactly
  [number] - select item by index (starting from 0)

Episode selectors:
  first - first episode of the series
  last - last episode of the series
  all - all episodes of the series
  [number] - select episode by index (starting from 0)
  [from]-[to] - select episodes by range
  @[substring]@ - select episodes by name substring

When using the json flag the item selector can be omitted; every search
result is then included.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		jsonOut, _ := cmd.Flags().GetBool("json")

		if !jsonOut {
			lo.Must0(cmd.MarkFlagRequired("item"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		client, err := jellyfin.FromConfig()
		handleErr(err)

		searchQuery := lo.Must(cmd.Flags().GetString("query"))

		output := lo.Must(cmd.Flags().GetString("output"))
		var writer io.Writer
		if output != "" {
			writer, err = filesystem.API().Create(output)
			handleErr(err)
		} else {
			writer = os.Stdout
		}

		itemFlag := lo.Must(cmd.Flags().GetString("item"))
		itemPicker := mo.None[inline.ItemPicker]()
		if itemFlag != "" {
			fn, err := inline.ParseItemPicker(itemFlag, searchQuery)
			handleErr(err)
			itemPicker = mo.Some(fn)
		}

		episodeFlag := lo.Must(cmd.Flags().GetString("episodes"))
		episodesFilter := mo.None[inline.EpisodesFilter]()
		if episodeFlag != "" {
			fn, err := inline.ParseEpisodesFilter(episodeFlag)
			handleErr(err)
			episodesFilter = mo.Some(fn)
		}

		options := &inline.Options{
			Client:         client,
			Json:           lo.Must(cmd.Flags().GetBool("json")),
			Query:          searchQuery,
			ItemPicker:     itemPicker,
			EpisodesFilter: episodesFilter,
			Out:            writer,
			StreamURLs:     lo.Must(cmd.Flags().GetBool("stream-urls")),
		}

		handleErr(inline.Run(options))
	},
}

func init() {
	inlineCmd.AddCommand(inlineSchemaCmd)
}

// inlineSchemaCmd generates JSON schemas for structured inline mode outputs.
var inlineSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema for structured inline mode output",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch strings.ToLower(name) {
			case "item", "entry", "playable", "output":
				return filepath.Base(t.PkgPath()) + "." + name
			}

			return name
		}

		schema := reflector.Reflect(&inline.Output{})

		handleErr(json.NewEncoder(os.Stdout).Encode(schema))
	},
}
