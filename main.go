package main

import "github.com/Norgate-AV/extbuild/cmd"

func main() {
	cmd.Execute()
}
