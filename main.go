package main

import "github.com/llehouerou/mediastore/internal/cli"

func main() {
	cli.Execute()
}
