package main

import "pwsi/cmd"

func main() {
	cmd.Execute()
}
