package main

import "github.com/mvp-joe/repo-digest/internal/cli"

func main() {
	cli.Execute()
}
