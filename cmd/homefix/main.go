package main

import (
	"os"

	"homefix/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
