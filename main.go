package main

import "muselib/cmd"

func main() {
	cmd.Execute()
}
