package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evidencechain/internal/server"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP API",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "migrate",
			Usage: "Apply database migrations before serving",
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	logger := newLogger(config)

	blobs, err := openStorage(ctx, config)
	if err != nil {
		return err
	}

	ledger, closeLedger, err := openLedger(ctx, config, logger, cCtx.Bool("migrate"))
	if err != nil {
		return err
	}
	defer closeLedger()

	var keys server.KeySetProvider
	if config.JWKSURL != "" {
		jwkCache, err := jwk.NewCache(ctx, httprc.NewClient())
		if err != nil {
			return fmt.Errorf("failed to initialize jwk cache: %w", err)
		}

		err = jwkCache.Register(ctx, config.JWKSURL)
		if err != nil {
			return fmt.Errorf("failed to register jwks url with cache: %w", err)
		}

		keys = func(ctx context.Context) (jwk.Set, error) {
			return jwkCache.Lookup(ctx, config.JWKSURL)
		}
	}

	services := newCustodyServices(config, logger, blobs, ledger)

	srv := server.New(
		config,
		logger,
		ledger,
		services.writer,
		services.verifier,
		services.auditor,
		keys,
	)

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
