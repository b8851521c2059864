package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/service"
	"github.com/DeemaAlothman/simple-shop/pkg/catalog/infrastructure"
	"github.com/DeemaAlothman/simple-shop/pkg/catalog/infrastructure/mysql"
	"github.com/DeemaAlothman/simple-shop/pkg/catalog/infrastructure/transport"
)

const appID = "catalogservice"

type config struct {
	ServeRESTAddress string `envconfig:"serve_rest_address" default:":8080"`
	DatabaseDSN      string `envconfig:"database_dsn" default:"shop:shop@tcp(localhost:3306)/shop?parseTime=true"`
	MigrateOnStart   bool   `envconfig:"migrate_on_start" default:"true"`
}

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:  appID,
		Usage: "product catalog, offers and order placement service",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the REST server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: runMigrations,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("service failed")
	}
}

func parseConfig() (*config, error) {
	c := new(config)
	if err := envconfig.Process(appID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func serve(_ *cli.Context) error {
	cfg, err := parseConfig()
	if err != nil {
		return err
	}

	db, err := mysql.Connect(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := mysql.Migrate(db); err != nil {
			return err
		}
	}

	client := mysql.NewClient(db)
	dispatcher := infrastructure.NewEventLogger()

	services := transport.Services{
		Pricing:   service.NewPricingService(client.Products(), client.Offers()),
		Placement: service.NewPlacementService(client, dispatcher),
		Catalog:   service.NewCatalogQueryService(client.Products(), client.Categories(), client.Brands()),
		Products:  service.NewProductService(client.Products(), client.Categories(), client.Brands(), dispatcher),
		Offers:    service.NewOfferService(client, client.Offers(), dispatcher),
		Orders:    service.NewOrderService(client.Orders(), dispatcher),
	}

	srv := &http.Server{
		Addr:    cfg.ServeRESTAddress,
		Handler: transport.Router(services),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.WithFields(log.Fields{"address": cfg.ServeRESTAddress}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func runMigrations(_ *cli.Context) error {
	cfg, err := parseConfig()
	if err != nil {
		return err
	}

	db, err := mysql.Connect(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := mysql.Migrate(db); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}
