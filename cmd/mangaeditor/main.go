package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd, cliCtx := newCLI()
	err := cmd.Execute()
	if closeErr := cliCtx.close(); closeErr != nil {
		fmt.Fprintln(os.Stderr, closeErr)
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
