package main

import "github.com/mmynk/billminder/internal/cli"

func main() {
	cli.Execute()
}
