package main

import "github.com/jihghong/tw-stock-daily/cmd"

func main() {
	cmd.Execute()
}
