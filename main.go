package main

import "github.com/LullabiesGr/AilbumsV2-sub002/cmd"

func main() {
	cmd.Execute()
}
