package main

import (
	"github.com/koralabs/kora/cmd"
)

func main() {
	cmd.Execute()
}
