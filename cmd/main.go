package main

import (
	"github.com/dyike/CortexChat/internal/cli"
)

func main() {
	cli.Run()
}
