// Package cmd implements the command-line interface for vidra.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vidra-cli/vidra/history"
	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/key"
	"github.com/vidra-cli/vidra/log"
	"github.com/vidra-cli/vidra/playback"
	"github.com/vidra-cli/vidra/player"
	"github.com/vidra-cli/vidra/query"
	"github.com/vidra-cli/vidra/util"
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("wait", "w", true, "Block until the external player exits")
	runCmd.Flags().Float64P("start", "t", -1, "Start position in seconds, overriding the server resume point")
}

// runCmd plays the best library match for a query without entering a UI.
var runCmd = &cobra.Command{
	Use:   "run <query>",
	Short: "Play the first library match for a query",
	Long: `Search the configured media server and immediately start playback of the
first matching item in the external player. Useful for scripting and quick launches.`,
	Args:    cobra.MinimumNArgs(1),
	Example: "  vidra run the expanse s01e01",
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		client, err := jellyfin.FromConfig()
		handleErr(err)

		ctx := context.Background()
		term := strings.Join(args, " ")

		items, err := client.Search(ctx, term)
		handleErr(err)

		if len(items) == 0 {
			handleErr(fmt.Errorf("nothing found for %q", term))
		}

		util.Ignore(func() error {
			return query.Remember(term, 1)
		})

		item := items[0]
		if item.Type == jellyfin.ItemSeries {
			handleErr(errors.New("query matched a series, pick an episode (e.g. append s01e01)"))
		}

		sources, playSessionID, err := client.PlaybackInfo(ctx, item.ID)
		handleErr(err)

		if len(sources) == 0 {
			handleErr(fmt.Errorf("no playable media sources for %s", item.DisplayTitle()))
		}

		session, err := playback.Resolve(client, item, sources[0], playSessionID)
		handleErr(err)

		if start := lo.Must(cmd.Flags().GetFloat64("start")); start >= 0 {
			session.StartSeconds = start
		}

		backend, err := player.ForName(viper.GetString(key.Player))
		handleErr(err)

		manager := playback.NewManager(backend)
		handleErr(manager.Start(session, nil))

		log.Infof("playing %s (%s)", session.Title(), session.StreamType)

		if viper.GetBool(key.HistorySaveOnWatch) {
			if err := history.Save(item, session.StartSeconds, 0); err != nil {
				log.Warnf("failed to save history: %v", err)
			}
		}

		if viper.GetBool(key.PlayerReportProgress) {
			util.Ignore(func() error {
				return client.ReportStart(ctx, jellyfin.PlaystateReport{
					ItemID:        item.ID,
					MediaSourceID: session.Source.ID,
					PlaySessionID: session.PlaySessionID,
					PositionTicks: jellyfin.SecondsToTicks(session.StartSeconds),
				})
			})
		}

		if lo.Must(cmd.Flags().GetBool("wait")) {
			<-manager.Wait()
			manager.Stop()
		}
	},
}
