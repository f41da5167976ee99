package main

import (
	"os"

	"github.com/sgryjp/journalint/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
