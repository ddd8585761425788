package main

import "github.com/ait-tooling/ait/cmd"

func main() {
	cmd.Execute()
}
