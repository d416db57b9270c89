package main

import "github.com/jackwu/vibetrail/cli"

func main() {
	cli.Execute()
}
