package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "exchange",
	Short: "EDI exchange service for VICS 4010/5010 retail documents",
	Long: `A service that parses inbound 850 purchase orders, generates 856
advance ship notices and 810 invoices, and archives the outbound
interchanges.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := cmd.Help()
		if err != nil {
			log.Error().Err(err).Msg("Failed to display help")
		}
	},
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize()
}
