package fileio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte("\uFEFF")

// readCSV detects the encoding and the delimiter (',', ';' or tab) and returns raw records.
// Supplier exports come as UTF-8 (with or without BOM), UTF-16, Windows-1251/1252 or Latin-1.
func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	peek, _ := br.Peek(4096)

	var dec io.Reader = br
	// UTF-8 с BOM детектору не отдаём
	if !bytes.HasPrefix(peek, utf8BOM) {
		if enc := detectEncoding(peek); enc != nil {
			dec = transform.NewReader(br, enc.NewDecoder())
		}
	}

	// разделитель угадываем по первой строке уже в UTF-8
	body, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimPrefix(body, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(body))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = sniffDelimiter(body)
	return cr.ReadAll()
}

func detectEncoding(peek []byte) encoding.Encoding {
	if len(peek) == 0 {
		return nil
	}
	det, err := chardet.NewTextDetector().DetectBest(peek)
	if err != nil || det == nil {
		return nil
	}
	switch strings.ToLower(det.Charset) {
	case "windows-1251":
		return charmap.Windows1251
	case "windows-1252":
		return charmap.Windows1252
	case "iso-8859-1":
		return charmap.ISO8859_1
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	default:
		return nil // UTF-8 / ASCII
	}
}

func sniffDelimiter(body []byte) rune {
	line := body
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		line = body[:i]
	}
	best, bestN := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := strings.Count(string(line), string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
