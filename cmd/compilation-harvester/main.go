package main

import "github.com/pfrederiksen/compilation-harvester/internal/cli"

func main() {
	cli.Execute()
}
