// Public domain.

package main

import "github.com/soniakeys/removelines/internal/rlprog"

func main() {
	rlprog.Main()
}
