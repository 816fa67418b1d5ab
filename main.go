package main

import "github.com/twiced-technology-gmbh/pawglance/cmd"

func main() {
	cmd.Execute()
}
