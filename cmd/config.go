package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/formlens/formlens/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Formlens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("api_key: %s\n", mask(cfg.APIKey))
		fmt.Printf("summary_base_url: %s\n", cfg.SummaryBaseURL)
		fmt.Printf("summary_model: %s\n", cfg.SummaryModel)
		fmt.Printf("temperature: %.3f\n", cfg.Temperature)
		fmt.Printf("max_tokens: %d\n", cfg.MaxTokens)
		fmt.Printf("summary_timeout_sec: %d\n", cfg.SummaryTimeout)
		fmt.Printf("store_dir: %s\n", cfg.StoreDir)
		if cfg.SeedFile != "" {
			fmt.Printf("seed_file: %s\n", cfg.SeedFile)
		}
		fmt.Printf("max_unique_ratio: %.2f\n", cfg.MaxUniqueRatio)
		fmt.Printf("ratio_min_valid: %d\n", cfg.RatioMinValid)
		fmt.Printf("max_average_length: %.0f\n", cfg.MaxAverageLength)
		fmt.Printf("max_categories: %d\n", cfg.MaxCategories)
		fmt.Printf("correlation_cap: %d\n", cfg.CorrelationCap)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "api_key":
			cfg.APIKey = val
		case "summary_base_url":
			cfg.SummaryBaseURL = val
		case "summary_model":
			cfg.SummaryModel = val
		case "temperature":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for temperature: %w", err)
			}
			cfg.Temperature = f
		case "max_tokens":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for max_tokens: %w", err)
			}
			cfg.MaxTokens = i
		case "summary_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for summary_timeout_sec: %v", val)
			}
			cfg.SummaryTimeout = i
		case "store_dir":
			cfg.StoreDir = val
		case "seed_file":
			cfg.SeedFile = val
		case "max_unique_ratio":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 || f > 1 {
				return fmt.Errorf("invalid ratio for max_unique_ratio: %v", val)
			}
			cfg.MaxUniqueRatio = f
		case "ratio_min_valid":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for ratio_min_valid: %v", val)
			}
			cfg.RatioMinValid = i
		case "max_average_length":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid float for max_average_length: %v", val)
			}
			cfg.MaxAverageLength = f
		case "max_categories":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 1 {
				return fmt.Errorf("invalid int for max_categories: %v", val)
			}
			cfg.MaxCategories = i
		case "correlation_cap":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for correlation_cap: %v", val)
			}
			cfg.CorrelationCap = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func mask(s string) string {
	if s == "" {
		return "(unset)"
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "..." + s[len(s)-3:]
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
