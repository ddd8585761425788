package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ait-tooling/ait/internal/dependency"
	"github.com/ait-tooling/ait/internal/shared/llmutils"
)

var historyClear bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear the saved conversation",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete the saved conversation")
}

func runHistory(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := dependency.NewHistoryStore(cfg)
	if err != nil {
		return err
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	ctx := context.Background()
	if historyClear {
		if err := store.Clear(ctx); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Println("✓ Conversation cleared")
		return nil
	}

	msgs, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		fmt.Println("No saved conversation.")
		return nil
	}
	for _, m := range msgs {
		fmt.Printf("%s  %-9s %s\n", m.Timestamp.Format("2006-01-02 15:04:05"), m.Role, llmutils.Truncate(m.Message, 100))
		if m.Extended != "" {
			fmt.Printf("%31s %s\n", "", llmutils.Truncate(m.Extended, 100))
		}
	}
	return nil
}
