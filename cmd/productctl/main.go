package main

import (
	"fmt"
	"os"

	"product-manager/internal/tools/productctl"
)

func main() {
	if err := productctl.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
