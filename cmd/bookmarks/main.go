package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AlibekovAA/linkmark/internal/common/bootstrap"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.NewBookmarksApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bookmarks service: %v\n", err)
		os.Exit(1)
	}

	bootstrap.Run(ctx, &app.App, "bookmarks")
}
