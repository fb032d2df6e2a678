package main

import "github.com/promptartclash/arena/cmd/arenaapi/cmd"

func main() {
	cmd.Execute()
}
