package main

import "github.com/twiced-technology-gmbh/laneboard/cmd"

func main() {
	cmd.Execute()
}
