package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hubchat/internal/api"
	"hubchat/internal/auth"
)

func newHubsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hubs",
		Short: "List the hub catalog with loaded markers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client := api.NewClient(cfg.ServerURL, cfg.RequestTimeout.Duration())
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			hubs, err := client.ListHubs(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch hubs: %w", err)
			}
			loaded := map[string]bool{}
			if names, err := client.ListLoadedHubs(ctx); err == nil {
				for _, name := range names {
					loaded[name] = true
				}
			}
			if len(hubs) == 0 {
				fmt.Println("No hubs found")
				return nil
			}
			for _, hub := range hubs {
				marker := " "
				if loaded[hub.HubName] {
					marker = "*"
				}
				fmt.Printf("%s %-30s %4d files  %s\n", marker, hub.HubName, hub.FileCount, hub.Status)
			}
			fmt.Println("\n* = loaded in server memory")
			return nil
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check service reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client := api.NewClient(cfg.ServerURL, cfg.RequestTimeout.Duration())
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := client.Health(ctx); err != nil {
				return fmt.Errorf("service not reachable at %s: %w", cfg.ServerURL, err)
			}
			fmt.Printf("connected to %s\n", cfg.ServerURL)
			return nil
		},
	}
}

func newLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login <user>",
		Short: "Start an authenticated session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			markers, err := auth.OpenMarkers(cfg.DataDir)
			if err != nil {
				return err
			}
			if err := markers.MarkLoggedIn(args[0]); err != nil {
				return err
			}
			fmt.Printf("logged in as %s\n", args[0])
			return nil
		},
	}
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the session markers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			markers, err := auth.OpenMarkers(cfg.DataDir)
			if err != nil {
				return err
			}
			if err := markers.Reset(); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
}
