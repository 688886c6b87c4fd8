package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	oaisim "github.com/zimeon/oaipmh-simulator"
	"github.com/zimeon/oaipmh-simulator/server"
)

const shutdownGrace = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulator",
	Long: `Run an OAI-PMH server for the repository described in a JSON or YAML
file. To make the server externally visible use --host 0.0.0.0.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repoPath, err := homedir.Expand(viper.GetString("repo"))
		if err != nil {
			return err
		}
		repo, err := oaisim.LoadRepository(repoPath, logger)
		if err != nil {
			return err
		}
		addr := net.JoinHostPort(viper.GetString("host"), strconv.Itoa(viper.GetInt("port")))
		path := "/" + strings.Trim(viper.GetString("path"), "/")
		baseURL := viper.GetString("base-url")
		if baseURL == "" {
			baseURL = "http://" + addr + path
		}
		srv := server.New(repo, server.Options{
			Path:    path,
			BaseURL: baseURL,
			NoPost:  viper.GetBool("no-post"),
			Logger:  logger,
		})
		return run(cmd.Context(), srv, addr, repoPath, viper.GetBool("watch"))
	},
}

// run serves until SIGINT or SIGTERM, or until the listener fails.
func run(ctx context.Context, srv *server.Server, addr, repoPath string, watch bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hs := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", addr))
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return hs.Shutdown(sctx)
	})
	if watch {
		g.Go(func() error {
			return srv.Watch(ctx, repoPath)
		})
	}
	return g.Wait()
}

func init() {
	f := serveCmd.Flags()
	f.IntP("port", "p", 5555, "port to run on")
	f.String("host", "127.0.0.1", "host to bind to")
	f.String("path", "oai", "path of the OAI-PMH base URL")
	f.StringP("repo", "r", "data/repo1.json", "JSON or YAML file describing the repository")
	f.String("base-url", "", "base URL reported in responses (default http://<host>:<port>/<path>)")
	f.Bool("no-post", false, "do not support POST requests (part of OAI-PMH v2)")
	f.Bool("watch", false, "reload the repository file when it changes")
	bindFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}
