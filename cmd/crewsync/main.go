package main

import "github.com/crewsync/crewsync/cmd/crewsync/cmd"

func main() {
	cmd.Execute()
}
