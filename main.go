package main

import "github.com/Builder-Lawyers/site-moderation/cmd"

func main() {
	cmd.Execute()
}
