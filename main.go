package main

import "github.com/rscscan/rscscan/cmd/rscscan"

func main() { rscscan.Execute() }
