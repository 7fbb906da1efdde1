package main

import (
	"context"
	"log"

	"github.com/antonk9218/skdesk/internal/client/api"
	"github.com/antonk9218/skdesk/internal/client/cli"
	"github.com/antonk9218/skdesk/internal/client/config"
	"github.com/antonk9218/skdesk/internal/logging"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewTextLogger(cfg.LogLevel)

	// The request-signature provider is supplied by the embedding
	// application; without one, signed game-data endpoints are rejected
	// by the service.
	var sign api.SignFunc
	remote := api.NewHTTPClient(cfg.AuthBaseURL, cfg.APIBaseURL, sign)

	app, err := cli.NewApp(ctx, cfg, logger, remote, remote)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
