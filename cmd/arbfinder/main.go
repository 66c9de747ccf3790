package main

import "arbitrage-finder/internal/cli"

func main() {
	cli.Execute()
}
