// Command zapper reconciles a project's declared native processes and
// docker containers against their desired running state.
package main

func main() {
	Execute()
}
