// Package main is the entry point for the bloglist shell.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bloglist/local-app/src/pkg/cli"
	"bloglist/local-app/src/pkg/config"
)

var opts options

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bloglist",
	Short: "Terminal client for the blog list service",
	Long: `bloglist browses and edits a shared list of blogs.

Anyone can read the list. After logging in you can add, like and remove
blogs. The session is kept on disk until you log out.

Run without arguments to start the interactive shell.`,
	SilenceUsage: true,
	RunE:         runShell,
}

// listCmd prints the list once
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the blog list and exit",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// logoutCmd drops the persisted session
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

// logsCmd pretty-prints the log files
var logsCmd = &cobra.Command{
	Use:   "logs [dir]",
	Short: "Pretty-print the JSON log files",
	Long: `Reads every *.log file in the directory (default: the configured log folder)
and prints the entries in time order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogs,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "Backend base url (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	logsCmd.Flags().StringP("filter", "f", "", "Only show entries containing this text")

	rootCmd.AddCommand(listCmd, logoutCmd, logsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.view.Start(ctx); err != nil {
		return err
	}

	shell, err := cli.NewCLI(a.adapter, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer shell.Close()
	shell.Watch(a.events)

	return shell.Run(ctx)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	blogs, err := a.view.Refresh(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(blogs) == 0 {
		fmt.Fprintln(out, "No blogs.")
		return nil
	}
	for i, b := range blogs {
		fmt.Fprintf(out, "%2d. %s %s (%d likes)\n", i+1, b.Title, b.Author, b.Likes)
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.view.Logout(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return nil
}
