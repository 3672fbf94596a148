package main

import "github.com/dh1tw/dspout/cmd"

func main() {
	cmd.Execute()
}
