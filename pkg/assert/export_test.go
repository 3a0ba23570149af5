package assert

// SetExit swaps the process exit for tests and returns a restore func.
func SetExit(fn func(int)) func() {
	prev := exit
	exit = fn
	return func() { exit = prev }
}
