package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"coeating/internal/models"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp starts the application for one CLI command. The caller must defer
// app.Shutdown.
func newApp(cmd *cobra.Command) (*App, error) {
	app := NewApp()
	if err := app.Startup(cmd.Context()); err != nil {
		return nil, err
	}
	return app, nil
}

var rootCmd = &cobra.Command{
	Use:   "coeating",
	Short: "Photograph an ingredient label and check it against your preferences",
}

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Analyze an ingredient label photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Shutdown(cmd.Context())

		if err := app.ConfigureAnalyzer(cmd.Context()); err != nil {
			return err
		}

		image, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		storedPath, err := app.StoreCapturedImage(args[0])
		if err != nil {
			return err
		}

		prefs, err := app.Preferences.Get(cmd.Context())
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}

		states, cancel := app.Scans.Subscribe()
		defer cancel()

		token := app.Scans.Submit(cmd.Context(), image, mimeTypeForImage(args[0]), storedPath, *prefs)
		for state := range states {
			if state.Token != token {
				continue
			}
			switch state.Phase {
			case models.ScanInFlight:
				fmt.Println("Analyzing label...")
			case models.ScanSucceeded:
				fmt.Println(state.Output)
				if state.Pass {
					fmt.Println("\nVerdict: looks friendly to your preferences")
				} else {
					fmt.Println("\nVerdict: no match with your preferences detected")
				}
				return nil
			case models.ScanFailed:
				return fmt.Errorf("scan failed: %s", state.Message)
			}
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage previous scans",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List previous scans",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Shutdown(cmd.Context())

		records := app.Scans.History()
		if len(records) == 0 {
			fmt.Println("No scans yet.")
			return nil
		}
		for _, rec := range records {
			fmt.Printf("%4d  %s  %s\n", rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"), rec.DisplayName)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the full assessment of one scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Shutdown(cmd.Context())

		for _, rec := range app.Scans.History() {
			if rec.ID == id {
				fmt.Printf("%s\n\n%s\n", rec.DisplayName, rec.Details)
				if rec.ImagePath != "" {
					fmt.Printf("\nImage: %s\n", rec.ImagePath)
				}
				return nil
			}
		}
		return fmt.Errorf("no scan with id %d", id)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a scan from history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Shutdown(cmd.Context())

		if err := app.Scans.DeleteScan(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted scan %d\n", id)
		return nil
	},
}

// prefs command
var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage your dietary and cosmetic preferences",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Shutdown(cmd.Context())

		prefs, err := app.Preferences.Get(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Name:     %s\n", prefs.UserName)
		fmt.Printf("Dietary:  %s\n", prefs.DietaryPreferences)
		fmt.Printf("Cosmetic: %s\n", prefs.CosmeticPreferences)
		return nil
	},
}

var (
	prefsName     string
	prefsDietary  string
	prefsCosmetic string
)

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save preferences (omitted flags keep their current value)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Shutdown(cmd.Context())

		prefs, err := app.Preferences.Get(cmd.Context())
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("name") {
			prefs.UserName = prefsName
		}
		if cmd.Flags().Changed("dietary") {
			prefs.DietaryPreferences = prefsDietary
		}
		if cmd.Flags().Changed("cosmetic") {
			prefs.CosmeticPreferences = prefsCosmetic
		}

		if err := app.Preferences.Save(cmd.Context(), prefs); err != nil {
			return err
		}
		fmt.Println("Preferences saved.")
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage provider API keys",
}

var keysSetKey string

var keysSetCmd = &cobra.Command{
	Use:   "set <provider>",
	Short: "Store an API key (reads from stdin when --key is omitted)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Shutdown(cmd.Context())

		if app.Keys == nil {
			return fmt.Errorf("keyring is not available on this system")
		}

		key := keysSetKey
		if key == "" {
			fmt.Fprintf(os.Stderr, "Enter API key for %s: ", args[0])
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("read key: %w", err)
			}
			key = strings.TrimSpace(line)
		}

		if err := app.Keys.StoreApiKey(args[0], []byte(key)); err != nil {
			return err
		}
		fmt.Printf("Stored API key for %s\n", args[0])
		return nil
	},
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete <provider>",
	Short: "Remove a stored API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Shutdown(cmd.Context())

		if app.Keys == nil {
			return fmt.Errorf("keyring is not available on this system")
		}
		if err := app.Keys.DeleteApiKey(args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed API key for %s\n", args[0])
		return nil
	},
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers with a stored API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Shutdown(cmd.Context())

		if app.Keys == nil {
			return fmt.Errorf("keyring is not available on this system")
		}
		providers, err := app.Keys.ListProviders()
		if err != nil {
			return err
		}
		if len(providers) == 0 {
			fmt.Println("No stored API keys.")
			return nil
		}
		for _, p := range providers {
			fmt.Println(p)
		}
		return nil
	},
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid scan id %q", arg)
	}
	return uint(id), nil
}

func mimeTypeForImage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

func init() {
	prefsSetCmd.Flags().StringVar(&prefsName, "name", "", "user name")
	prefsSetCmd.Flags().StringVar(&prefsDietary, "dietary", "", "dietary preference text, e.g. \"vegan, no palm oil\"")
	prefsSetCmd.Flags().StringVar(&prefsCosmetic, "cosmetic", "", "cosmetic preference text, e.g. \"fragrance free\"")
	keysSetCmd.Flags().StringVar(&keysSetKey, "key", "", "API key value")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd)
	prefsCmd.AddCommand(prefsShowCmd, prefsSetCmd)
	keysCmd.AddCommand(keysSetCmd, keysDeleteCmd, keysListCmd)
	rootCmd.AddCommand(scanCmd, historyCmd, prefsCmd, keysCmd)
}
