package main

import "github.com/frahmantamala/kudos-points/cmd"

func main() {
	cmd.Execute()
}
