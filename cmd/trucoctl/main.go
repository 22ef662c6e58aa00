package main

import "github.com/mcoot/trucogame/internal/cli"

func main() {
	cli.Execute()
}
