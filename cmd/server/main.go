package main

import (
	"context"
	"fmt"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/joho/godotenv"

	"github.com/Tyrowin/roomchat/internal/server"
)

func main() {
	// A .env file is optional; real environment variables take precedence.
	_ = godotenv.Load()

	config, err := server.NewConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "roomchat: %v\n", err)
		os.Exit(1)
	}

	logger := server.NewLogger(config.LogLevel, config.LogFormat)
	logger.Info().Str("port", config.Port).Strs("origins", config.AllowedOrigins).Msg("starting roomchat server")

	app := server.NewApp(config, logger)

	go func() {
		if err := app.Start(); err != nil {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	wait := gfshutdown.GracefulShutdown(context.Background(), config.ShutdownTimeout, map[string]gfshutdown.Operation{
		"roomchat": func(ctx context.Context) error {
			return app.Shutdown(ctx)
		},
	})

	exitCode := <-wait
	if exitCode != 0 {
		logger.Error().Int("code", exitCode).Msg("shutdown completed with errors")
		os.Exit(exitCode)
	}
	logger.Info().Msg("shutdown completed")
}
