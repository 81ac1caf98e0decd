package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/koralabs/kora/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "kora",
	Short: "A terminal coding assistant",
	Long:  `Kora is a terminal coding assistant that chats with an OpenAI-compatible model and edits files on its behalf.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Default behavior: run the chat application
		runChatApp()
	},
}

func runChatApp() {
	application, err := app.NewApplication()
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	defer application.Stop()

	if err := application.Start(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution error: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
