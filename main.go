package main

import (
	"fmt"
	"os"

	"github.com/campaignkit/docweave/internal/cmd"
	"github.com/campaignkit/docweave/internal/version"
)

func root() int {
	root := cmd.Root()
	root.Version = fmt.Sprintf("docweave %s", version.Full())
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

func main() {
	os.Exit(root())
}
