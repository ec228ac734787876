package loader

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseHex reads one hexadecimal word per line. Text after '#' is a
// comment, blank lines are skipped and a 0x prefix is optional.
func ParseHex(r io.Reader) ([]uint32, error) {
	var words []uint32

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++

		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		text = strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
		word, err := strconv.ParseUint(text, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		words = append(words, uint32(word))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(words) == 0 {
		return nil, fmt.Errorf("no instruction words")
	}

	return words, nil
}

// WordsFromBytes splits data into little-endian words, zero-padding the
// final partial word.
func WordsFromBytes(data []byte) []uint32 {
	n := (len(data) + 3) / 4
	words := make([]uint32, n)

	var buf [4]byte
	for i := range words {
		buf = [4]byte{}
		copy(buf[:], data[i*4:])
		words[i] = binary.LittleEndian.Uint32(buf[:])
	}

	return words
}
