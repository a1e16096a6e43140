package biograph

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soundprediction/biograph/pkg/config"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question against the knowledge graph",
	Long: `Ask a single question against the knowledge graph and print the cited
answer. Pass --conversation to continue an earlier conversation within the
same server process; a one-shot invocation always starts fresh.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var askConversationID string

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&askConversationID, "conversation", "", "Conversation ID to continue")
	askCmd.Flags().String("db-uri", "", "Neo4j URI")
	askCmd.Flags().String("db-username", "", "Neo4j username")
	askCmd.Flags().String("db-password", "", "Neo4j password")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("db-uri") {
		cfg.Database.URI, _ = cmd.Flags().GetString("db-uri")
	}
	if cmd.Flags().Changed("db-username") {
		cfg.Database.Username, _ = cmd.Flags().GetString("db-username")
	}
	if cmd.Flags().Changed("db-password") {
		cfg.Database.Password, _ = cmd.Flags().GetString("db-password")
	}

	client, cleanup, err := initializeClient(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize biograph: %w", err)
	}
	defer cleanup()

	question := strings.Join(args, " ")
	result, err := client.Chat(cmd.Context(), askConversationID, question)
	if err != nil {
		return err
	}

	fmt.Println(result.Answer)
	fmt.Println()
	fmt.Printf("Confidence: %.2f (mode: %s)\n", result.Confidence, result.Mode)
	if len(result.Sources) > 0 {
		fmt.Println("Sources:")
		for _, source := range result.Sources {
			fmt.Printf("  [%s] %s (%.2f): %s\n", source.Type, source.Name, source.Score, source.Excerpt)
		}
	}
	return nil
}
