package main

import "github.com/andrescamacho/remoteminer-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
