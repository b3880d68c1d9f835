// Command psort sorts the lines of text files with the parallel merge sort.
//
// Usage:
//
//	psort [flags] [file...]
//	psort -n -k 2 access.log other.log      # by the numeric second field
//	cat words | psort -r -v                  # reverse, log the strategy to stderr
//
// Lines whose keys compare equal keep their input order. With several files
// the input is the concatenation of the files in argument order.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
