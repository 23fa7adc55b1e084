package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Tyrowin/roomchat/internal/server"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine, the process environment still applies.
	_ = godotenv.Load()
	config, err := server.LoadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	log.Info("Starting chat server", "single_room", config.SingleRoom)

	hub := server.NewHub(config, log)
	go hub.Run()

	httpServer := server.CreateServer(config.Port, server.SetupRoutes(hub))

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.StartServer(httpServer, log)
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		config.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http": func(ctx context.Context) error {
				return server.ShutdownServer(ctx, httpServer, log)
			},
			"hub": func(context.Context) error {
				return hub.Shutdown(config.ShutdownTimeout)
			},
		},
	)

	var code int
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		// Listener closed by the shutdown operation, let the others finish.
		code = <-wait
	case code = <-wait:
	}
	if code != 0 {
		return fmt.Errorf("shutdown finished with exit code %d", code)
	}
	log.Info("Program stopped cleanly")
	return nil
}
