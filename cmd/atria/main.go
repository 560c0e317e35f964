package main

import "github.com/aussiebroadwan/atriahub/internal/cli"

var version = "dev"

func main() {
	cli.Execute(version)
}
