package main

import "github.com/aaelony/dx-fintools-fs/cmd"

func main() {
	cmd.Execute()
}
