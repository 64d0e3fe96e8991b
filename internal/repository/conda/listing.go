package conda

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	hrefPattern  = regexp.MustCompile(`href="([^"]+)"`)
	countPattern = regexp.MustCompile(`Files:\s+\d+`)
)

// RepairListing rewrites dir/index.html so that only table rows whose
// linked file exists in dir remain, and every "Files: N" token outside
// the rows shows the number of rows kept. Rows without a link, such as
// the <th> heading row, are kept but not counted; dropping them would
// strip the table header. The listing is streamed twice (count, then rewrite)
// and replaced atomically. It returns the number of rows kept.
func RepairListing(dir string) (int, error) {
	listing := filepath.Join(dir, "index.html")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		present[e.Name()] = true
	}

	kept, err := scanListing(listing, present, 0, nil)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(dir, ".index.html.*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if _, err := scanListing(listing, present, kept, w); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), listing); err != nil {
		return 0, err
	}
	return kept, nil
}

// scanListing walks the listing line by line, counting rows that reference
// present files. With a non-nil out the repaired listing is written there,
// using total for the file-count tokens.
func scanListing(path string, present map[string]bool, total int, out io.Writer) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	write := func(s string) error {
		if out == nil {
			return nil
		}
		_, err := io.WriteString(out, s)
		return err
	}

	count := 0
	for {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return 0, err
		}
		if line == "" && err == io.EOF {
			return count, nil
		}

		if !strings.Contains(line, "<tr>") {
			if out != nil {
				line = countPattern.ReplaceAllString(line, fmt.Sprintf("Files: %d", total))
			}
			if werr := write(line); werr != nil {
				return 0, werr
			}
			if err == io.EOF {
				return count, nil
			}
			continue
		}

		row, name, rerr := readRow(r, line)
		if rerr != nil {
			return 0, rerr
		}
		switch {
		case name == "":
			if werr := write(row); werr != nil {
				return 0, werr
			}
		case present[name]:
			count++
			if werr := write(row); werr != nil {
				return 0, werr
			}
		}
	}
}

// readRow accumulates lines from first up to and including the one
// closing the table row, returning the row and the file it links to.
func readRow(r *bufio.Reader, first string) (string, string, error) {
	var b strings.Builder
	name := ""

	line := first
	eof := false
	for {
		b.WriteString(line)
		if name == "" {
			if m := hrefPattern.FindStringSubmatch(line); m != nil {
				name = m[1]
				if unescaped, err := url.PathUnescape(name); err == nil {
					name = unescaped
				}
			}
		}
		if eof || strings.Contains(line, "</tr>") {
			return b.String(), name, nil
		}

		var err error
		line, err = r.ReadString('\n')
		if err == io.EOF {
			eof = true
		} else if err != nil {
			return "", "", err
		}
	}
}
