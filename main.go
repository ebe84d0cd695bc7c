package main

import "github.com/OmniNode-ai/omniroute/cmd"

func main() {
	cmd.Execute()
}
