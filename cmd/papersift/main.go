package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/agenthands/papersift/internal/cli"
)

func main() {
	// Environment from .env is optional; real variables win.
	_ = godotenv.Load()

	os.Exit(cli.Execute())
}
