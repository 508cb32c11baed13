package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AlibekovAA/linkmark/internal/common/bootstrap"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.NewAuthApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "auth service: %v\n", err)
		os.Exit(1)
	}

	bootstrap.Run(ctx, &app.App, "auth")
}
