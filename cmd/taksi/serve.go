package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/taksi8637-pixel/taksi2/internal/config"
	"github.com/taksi8637-pixel/taksi2/pkg/gallery"
	"github.com/taksi8637-pixel/taksi2/pkg/gate"
	"github.com/taksi8637-pixel/taksi2/pkg/phones"
	"github.com/taksi8637-pixel/taksi2/pkg/server"
	"github.com/taksi8637-pixel/taksi2/pkg/store"
	"github.com/taksi8637-pixel/taksi2/pkg/testimonial"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
		host       string
		staticDir  string
		dataDir    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the site server",
		Long: `Start the site server with the built-in content editor.

Configuration is read from taksi.json in the working directory (or
the file given with --config). The admin credentials can be
overridden with TAKSI_ADMIN_USERNAME and TAKSI_ADMIN_PASSWORD.

Examples:
  taksi serve
  taksi serve --port=8080
  taksi serve --config=/etc/taksi/taksi.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, port, host, staticDir, dataDir)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.ConfigFileName, "Path to the configuration file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from taksi.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from taksi.json)")
	cmd.Flags().StringVar(&staticDir, "static", "", "Static site directory (default from taksi.json)")
	cmd.Flags().StringVar(&dataDir, "data", "", "Data directory for the file backend (default from taksi.json)")

	return cmd
}

func runServe(configPath string, port int, host, staticDir, dataDir string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if port > 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if staticDir != "" {
		cfg.Static.Dir = staticDir
	}
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	hub := server.NewHub(logger)

	g := gate.New(
		gate.StaticVerifier{Username: cfg.Admin.Username, Password: cfg.Admin.Password},
		gate.WithNotifier(hub),
		gate.WithLogger(logger),
	)
	phoneReg := phones.New(ctx, st, g,
		phones.WithNotifier(hub),
		phones.WithLogger(logger),
	)
	galleryReg := gallery.New(ctx, st, g,
		gallery.WithNotifier(hub),
		gallery.WithLogger(logger),
	)
	testimonialReg := testimonial.New(testimonial.WithNotifier(hub))

	srv := server.New(server.Config{
		Logger:       logger,
		Gate:         g,
		Phones:       phoneReg,
		Gallery:      galleryReg,
		Testimonials: testimonialReg,
		Hub:          hub,
		StaticDir:    cfg.Static.Dir,
		StaticPrefix: cfg.Static.Prefix,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printBanner()
	fmt.Println()
	info("Site:    http://%s", cfg.Address())
	info("Static:  %s", cfg.Static.Dir)
	info("Backend: %s", cfg.Data.Backend)
	fmt.Println()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		fmt.Println()
		info("Received %s, shutting down...", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Close()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	success("Server stopped")
	return nil
}

// openStore builds the collection store named by the configuration.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Data.Backend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendS3:
		client := s3.New(s3.Options{Region: cfg.Data.S3.Region})
		return store.NewS3Store(client, cfg.Data.S3.Bucket, cfg.Data.S3.Prefix), nil
	default:
		return store.NewFileStore(cfg.Data.Dir)
	}
}
