// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/geremyCohen/arm-benchmarking-sub001/cmd/benchctl"

func main() {
	cmd.Execute()
}
