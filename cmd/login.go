// Package cmd implements the command-line interface for vidra.
package cmd

import (
	"context"
	"errors"
	"net/url"

	"github.com/AlecAivazis/survey/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vidra-cli/vidra/auth"
	"github.com/vidra-cli/vidra/icon"
	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/key"
	"github.com/vidra-cli/vidra/log"
	"github.com/vidra-cli/vidra/style"
)

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringP("server", "s", "", "Media server URL to authenticate against")
	loginCmd.Flags().StringP("username", "u", "", "Account username on the media server")

	rootCmd.AddCommand(logoutCmd)
}

// loginCmd authenticates against a media server and stores the session credentials.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against a media server and store the session",
	Long: `Authenticate against a Jellyfin-compatible media server by username and password.
The access token is stored in the system keyring, never in the config file.`,
	Run: func(cmd *cobra.Command, args []string) {
		serverURL := lo.Must(cmd.Flags().GetString("server"))
		if serverURL == "" {
			serverURL = viper.GetString(key.ServerURL)
		}

		if serverURL == "" {
			prompt := survey.Input{
				Message: "Server URL:",
				Help:    "Full base URL of the server, e.g. https://jellyfin.example.com:8096",
			}
			handleErr(survey.AskOne(&prompt, &serverURL, survey.WithValidator(func(ans interface{}) error {
				s, _ := ans.(string)
				u, err := url.Parse(s)
				if err != nil || !u.IsAbs() {
					return errors.New("an absolute URL is required")
				}
				return nil
			})))
		}

		client, err := jellyfin.NewClient(serverURL)
		handleErr(err)

		username := lo.Must(cmd.Flags().GetString("username"))
		if username == "" {
			prompt := survey.Input{
				Message: "Username:",
			}
			handleErr(survey.AskOne(&prompt, &username, survey.WithValidator(survey.Required)))
		}

		var password string
		passwordPrompt := survey.Password{
			Message: "Password:",
		}
		handleErr(survey.AskOne(&passwordPrompt, &password))

		handleErr(client.AuthenticateByName(context.Background(), username, password))

		handleErr(auth.SetCredentials(client.BaseURL().String(), username, auth.Credentials{
			Token:  client.Token,
			UserID: client.UserID,
		}))

		viper.Set(key.ServerURL, client.BaseURL().String())
		viper.Set(key.ServerUsername, username)
		if err := viper.WriteConfig(); err != nil {
			switch err.(type) {
			case viper.ConfigFileNotFoundError:
				handleErr(viper.SafeWriteConfig())
			default:
				handleErr(err)
			}
		}

		log.Infof("logged in to %s as %s", client.BaseURL(), username)
		cmd.Println(style.Fg(style.Green)(icon.Get(icon.Success)) + " Logged in as " + style.Fg(style.AccentColor)(username))
	},
}

// logoutCmd removes the stored session credentials.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored media server session",
	Run: func(cmd *cobra.Command, args []string) {
		serverURL := viper.GetString(key.ServerURL)
		username := viper.GetString(key.ServerUsername)

		if serverURL == "" || username == "" {
			handleErr(errors.New("no stored session found"))
		}

		handleErr(auth.DeleteToken(serverURL, username))

		viper.Set(key.ServerUsername, "")
		if err := viper.WriteConfig(); err != nil {
			log.Warnf("failed to update config: %v", err)
		}

		cmd.Println(style.Fg(style.Green)(icon.Get(icon.Success)) + " Logged out")
	},
}
