// Command boardroom runs the administrative dashboard: module views, record
// writes, exports and the HTTP API.
package main

import "github.com/mesh-intelligence/boardroom/internal/cli"

func main() {
	cli.Execute()
}
