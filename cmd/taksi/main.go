package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔╦╗┌─┐┬┌─┌─┐┬
   ║ ├─┤├┴┐└─┐│
   ╩ ┴ ┴┴ ┴└─┘┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "taksi",
		Short: "Content-managed taxi service site",
		Long: `Taksi serves the Denizli taxi site together with its built-in
content editor.

The site is a single page; an operator who logs in can edit the
phone numbers and the photo gallery in place. Changes are persisted
and pushed live to every open page.

  • JSON API for phones, gallery, testimonials, and session
  • Live toast and content updates over WebSocket
  • File, in-memory, or S3 collection storage
  • Prometheus metrics on /metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		initCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
