package main

import "github.com/skillforge-dev/skillforge/internal/cli"

func main() {
	cli.Execute()
}
