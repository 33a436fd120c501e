package lzw

// Compress reads bytes from in until the end of its stream and writes the
// code stream to out, closing out when done.
//
// Matching is greedy: a code is only emitted once the next byte falls off
// the longest known sequence. When every code has been assigned the
// compressor emits ResetCode, starts over with the literal dictionary and
// re-reads the byte that missed as the start of the next match.
func Compress(in Source[byte], out Sink[uint16]) Stats {
	dict, err := NewDictionary(TableSize)
	if err != nil {
		panic(err) // TableSize is always a valid capacity
	}
	var st Stats

	emit := func(c uint16) {
		out.Put(c)
		st.Codes++
	}

	cur := Root
	for {
		sym, ok := in.Get()
		if !ok {
			break
		}
		st.Bytes++

		for {
			if next, found := dict.Find(cur, sym); found {
				cur = next
				break
			}

			// cur is never Root here: every byte has a literal entry.
			emit(dict.Code(cur))
			if dict.Full() {
				emit(ResetCode)
				dict.Reset()
				st.Resets++
			} else {
				// Not full, and NextCode is the only code Add accepts.
				if _, err := dict.Add(cur, sym, dict.NextCode()); err != nil {
					panic(err)
				}
			}
			cur = Root
		}
	}

	if cur != Root {
		emit(dict.Code(cur))
	}
	out.Close()
	return st
}
