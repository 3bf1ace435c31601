// bitops project bitops.go
package bitops

// LetterSet is a bit set over alphabet indices 0..31.
type LetterSet uint32

func (s LetterSet) Set(bit int) LetterSet {
	return s | 1<<uint(bit&31)
}

func (s LetterSet) Has(bit int) bool {
	return s&(1<<uint(bit&31)) != 0
}
