package main

import "github.com/mcoot/playerledger/internal/cli"

func main() {
	cli.Execute()
}
