package main

import "github.com/kozaktomas/face-id/cmd"

func main() {
	cmd.Execute()
}
