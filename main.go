package main

import "github.com/StinkyLord/psl-catalog-builder/cmd"

func main() {
	cmd.Execute()
}
