package main

import "github.com/Another0Noob/gutenberg-reader/cmd"

func main() {
	cmd.Execute()
}
