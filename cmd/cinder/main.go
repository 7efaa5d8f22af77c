package main

import "github.com/tessro/cinder/internal/cli"

func main() {
	cli.Execute()
}
