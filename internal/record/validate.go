package record

// Validate probes store bytes before they are trusted.
//
// An empty store is valid. Otherwise the length must be a positive multiple of
// RecordLen and the first record's text fields must decode. Later records are
// not inspected.
func Validate(store []byte) error {
	if len(store) == 0 {
		return nil
	}
	if len(store) < RecordLen {
		return corruptf(0, "store of %d bytes is shorter than one record", len(store))
	}
	if len(store)%RecordLen != 0 {
		return corruptf(len(store)-len(store)%RecordLen, "store length %d is not a multiple of %d", len(store), RecordLen)
	}
	return AtRecord(probe(store[:RecordLen]), 0)
}

// ValidateAll checks the length and every record of store.
func ValidateAll(store []byte) error {
	if err := Validate(store); err != nil {
		return err
	}
	for i := 1; i*RecordLen < len(store); i++ {
		if err := probe(store[i*RecordLen : (i+1)*RecordLen]); err != nil {
			return AtRecord(err, i)
		}
	}
	return nil
}

func probe(rec []byte) error {
	off := 0
	for range numFields {
		_, next, err := field(rec, off)
		if err != nil {
			return err
		}
		off = next
	}
	// Track, disc and gain are fixed width; only their placement is checked.
	if len(rec[trackOffset:discOffset]) != 1 || len(rec[gainOffset:RecordLen]) != 4 {
		return corruptf(trackOffset, "trailer out of range")
	}
	return nil
}
