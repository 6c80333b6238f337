package main

import (
	"fmt"
	"os"

	"casearch/internal/cli"
	_ "casearch/internal/rules/all"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
