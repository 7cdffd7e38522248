package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/SINTEF/entities-service/internal/cli/commands"
	"github.com/SINTEF/entities-service/internal/cli/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		if strings.Contains(err.Error(), "unknown command") {
			ui.PrintError("%s", err.Error())
			fmt.Println("\nRun 'entities-service --help' for usage.")
		}
		os.Exit(1)
	}
}
