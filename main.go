package main

import "github.com/llehouerou/essai/internal/cli"

func main() {
	cli.Execute()
}
