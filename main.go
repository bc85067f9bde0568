package main

import "github.com/KaramelBytes/incidentclean-cli/cmd"

func main() {
	cmd.Execute()
}
