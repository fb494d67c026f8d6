package main

import (
	"os"

	"keyring-export/src/cli"
)

func main() {
	os.Exit(cli.Execute())
}
