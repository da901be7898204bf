package main

import "github.com/afisha-events/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
