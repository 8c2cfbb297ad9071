package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notecraft",
		Short: "Turn a product photo into a Xiaohongshu note with Gemini",
		Long: `Notecraft recognizes a product from a photo, lets you review the details,
then writes a Xiaohongshu post and draws a matching cover image.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newServeCmd())

	return cmd
}
