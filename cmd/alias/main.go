package main

import "github.com/mcoot/aliasgame/internal/cli"

func main() {
	cli.Execute()
}
