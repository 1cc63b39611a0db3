package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the gmailpoll application
var rootCmd = &cobra.Command{
	Use:   "gmailpoll",
	Short: "Polls Gmail for unread messages and logs their contents",
	Long: `gmailpoll polls the Gmail API on an interval, selects unread messages
matching the configured sender/subject/date filters, extracts their
bodies, marks them read and logs a summary of each message.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gmailpoll version %s\n" .Version}}`)

	// If no subcommand is provided, run the poll command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "poll")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newPollCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
