package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aussiebroadwan/voxauth/internal/auth/app"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Println(app.BuildVersion)
		return
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("auth: %v", err)
	}
}
