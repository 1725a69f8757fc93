package main

import "hubchat/internal/cli"

func main() {
	cli.Execute()
}
