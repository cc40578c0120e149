package main

import "github.com/theirongolddev/snowball/cmd"

func main() {
	cmd.Execute()
}
