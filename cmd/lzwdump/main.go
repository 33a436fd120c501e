package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pspoerri/lzwpipe/internal/lzw"
)

func main() {
	var limit int
	flag.IntVar(&limit, "n", 32, "Number of leading codes to print (0 = none, -1 = all)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lzwdump [flags] <file.lzw>\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var (
		count, literals, resets int
		maxCode                 uint16
		segment, longest        int // codes since the last reset
	)
	u := lzw.NewUnpacker(bufio.NewReader(f))
	for {
		c, err := u.ReadCode()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error after %d codes: %v\n", count, err)
			os.Exit(1)
		}

		if limit < 0 || count < limit {
			if count%16 == 0 {
				fmt.Printf("%8d:", count)
			}
			fmt.Printf(" %4d", c)
			if count%16 == 15 {
				fmt.Println()
			}
		}

		count++
		switch {
		case c == lzw.ResetCode:
			resets++
			longest = max(longest, segment)
			segment = 0
		case c < lzw.Radix:
			literals++
			segment++
		default:
			segment++
		}
		maxCode = max(maxCode, c)
	}
	longest = max(longest, segment)
	printed := count
	if limit >= 0 {
		printed = min(count, limit)
	}
	if printed%16 != 0 {
		fmt.Println()
	}

	fmt.Printf("File: %s\n", flag.Arg(0))
	fmt.Printf("Size: %d bytes (%d-bit codes, padding %d bits)\n",
		fi.Size(), lzw.Width, fi.Size()*8-int64(count)*lzw.Width)
	fmt.Printf("Codes: %d (%d literal, %d reset markers)\n", count, literals, resets)
	fmt.Printf("Max code: %d\n", maxCode)
	fmt.Printf("Longest run between resets: %d codes\n", longest)
}
