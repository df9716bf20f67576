package main

import (
	"context"
	"log/slog"
	"os"

	"optimedu/internal/app"
	"optimedu/internal/infrastructure"
)

func main() {
	application, err := app.NewApplication(os.Getenv("OPTIMEDU_CONFIG"))
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	if err := application.Run(context.Background()); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
