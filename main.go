package main

import "docchat/internal/cli"

func main() {
	cli.Execute()
}
