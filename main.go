package main

import (
	"context"
	"fmt"
	"os"

	"github.com/projuktisheba/bottling-erp-api/api"
)

func main() {
	ctx := context.Background()
	// Start backend server
	if err := api.RunServer(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start backend server: %v\n", err)
		os.Exit(1)
	}
}
