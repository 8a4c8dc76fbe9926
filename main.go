// Callmap generates a symbol index and function call graph for Python
// repositories.
package main

import "github.com/phobologic/callmap/cmd"

func main() {
	cmd.Execute()
}
