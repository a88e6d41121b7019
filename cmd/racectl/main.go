package main

import "github.com/hamsterrace/raceboard/internal/cli"

func main() {
	cli.Execute()
}
