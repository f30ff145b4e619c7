package main

import (
	"os"

	"github.com/jm-glowienke/fluffy-octo-spoon/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
