package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/dustsweep/dustnode/internal/pkg/builder"
)

func main() {
	_ = godotenv.Load()

	configFile := os.Getenv("JOB_CONFIG")
	if configFile == "" {
		configFile = "internal/pkg/config/job_ethereum.yaml"
	}

	server, err := builder.NewServer(configFile)
	if err != nil {
		panic(err)
	}
	server.Run()
}
