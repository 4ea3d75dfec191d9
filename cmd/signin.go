package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/newapi-signin/internal/app"
	"github.com/oshokin/newapi-signin/internal/config"
	"github.com/oshokin/newapi-signin/internal/logger"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var signinCmd = &cobra.Command{
	Use:   "signin [account names...]",
	Short: "Sign in the configured accounts and write the results file",
	Long: `Signs in every configured account, or only the named ones, strictly one after another.

For each account and identity provider (GitHub, Linux.do) the command:
1. Requests an OAuth state from the site
2. Restores the cached browser session, or logs in with the configured credentials
3. Submits a one-time code when the provider asks for one
4. Waits for the redirect back to the site and reads the user id
5. Saves the browser session and records the site cookies

The command fails when no sign-in succeeded.`,
	Example: `  newapi-signin signin
  newapi-signin -c accounts.yaml signin main backup --headless
  newapi-signin signin --output /tmp/results.yaml`,
	PersistentPreRun: initConfig,
	Run: func(cmd *cobra.Command, accountNames []string) {
		if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
			logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
		}

		logger.SetLevel(appConfig.ParsedLogLevel)

		app.ExecuteSignInCommand(cmd.Context(), appConfig, accountNames)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	flags := signinCmd.Flags()

	flags.Bool(
		"headless",
		false,
		"run the browser without a window.")

	flags.StringP(
		"output",
		"o",
		"",
		"file to write the sign-in results to.")

	flags.String(
		"log-level",
		"",
		"logging level: debug, info, warn or error.")

	flags.Bool(
		"no-prompt",
		false,
		"never ask for one-time codes on the terminal.")

	rootCmd.AddCommand(signinCmd)
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("headless"); flag != nil && flag.Changed {
		cfg.Headless, _ = flags.GetBool("headless")
	}

	if flag := flags.Lookup("output"); flag != nil && flag.Changed {
		cfg.OutputPath, _ = flags.GetString("output")
	}

	if flag := flags.Lookup("log-level"); flag != nil && flag.Changed {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if flag := flags.Lookup("no-prompt"); flag != nil && flag.Changed {
		noPrompt, _ := flags.GetBool("no-prompt")
		cfg.PromptSecrets = !noPrompt
	}

	return config.ValidateConfig(cfg)
}
