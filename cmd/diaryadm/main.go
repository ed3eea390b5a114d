package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophdiary/internal/admin"
)

func main() {
	if err := admin.NewRootCommand(admin.DefaultEnv()).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
