package main

import "graph_router/cmd"

func main() {
	cmd.Execute()
}
