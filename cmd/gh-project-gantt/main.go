package main

import "github.com/goblinsan/gh-project-gantt/cmd/gh-project-gantt/commands"

func main() {
	commands.Execute()
}
