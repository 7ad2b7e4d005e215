package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/txnimport/internal/cli"
)

func main() {
	// a missing .env is fine; flags and the environment still apply
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		cli.ReportError(os.Stderr, err)
		os.Exit(1)
	}
}
