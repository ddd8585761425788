package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ait-tooling/ait/internal/config"
	"github.com/ait-tooling/ait/internal/providers"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ait status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := resolvedConfigPath()

	fmt.Printf("%s ait Status\n\n", logo)

	_, statErr := os.Stat(cfgPath)
	cfgMark := "✗"
	if statErr == nil {
		cfgMark = "✓"
	}
	fmt.Printf("Config:    %s %s\n", cfgPath, cfgMark)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("  (%v)\n", err)
	}

	storage := cfg.StoragePath()
	_, stErr := os.Stat(storage)
	stMark := "✗"
	if stErr == nil {
		stMark = "✓"
	}
	fmt.Printf("History:   %s (%s) %s\n", storage, cfg.Storage.Backend, stMark)
	fmt.Printf("Model:     %s\n", cfg.Model())
	fmt.Printf("Endpoint:  %s\n\n", cfg.APIBase())

	fmt.Println("Providers:")
	for _, spec := range providers.PROVIDERS {
		marker := " "
		if spec.Name == cfg.Provider.Name {
			marker = "*"
		}
		label := spec.Label()
		switch {
		case spec.IsLocal:
			fmt.Printf(" %s %-12s ✓ local (%s)\n", marker, label, spec.DefaultAPIBase)
		case spec.Name == cfg.Provider.Name && cfg.APIKey() != "":
			fmt.Printf(" %s %-12s ✓\n", marker, label)
		case os.Getenv(spec.EnvKey) != "":
			fmt.Printf(" %s %-12s ✓ (%s)\n", marker, label, spec.EnvKey)
		default:
			fmt.Printf(" %s %-12s (not set)\n", marker, label)
		}
	}
	return nil
}
