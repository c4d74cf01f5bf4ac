package main

import "github.com/mikey/llm-style-responder/cmd/style-responder/cmd"

func main() {
	cmd.Execute()
}
