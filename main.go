package main

import "github.com/yiyuanh/snip/cmd"

func main() {
	cmd.Execute()
}
