package main

import (
	"context"
	"log"

	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("orders API stopped: %v", err)
	}
}
