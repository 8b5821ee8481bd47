package main

import "layer-manager/cmd"

func main() {
	cmd.Execute()
}
