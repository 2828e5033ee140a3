package supagrator

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// ErrFileNotFound is returned by ReadMigration when the migration path does
// not resolve to a file.
var ErrFileNotFound = errors.New("migration file not found")

// Migration represents the single migration file applied by a run.
type Migration struct {
	// Filename is the path the migration was read from.
	Filename string

	// SQL is the full file content.
	SQL string

	// Size is the content length in bytes.
	Size int

	// Md5 is the MD5 checksum of the content.
	Md5 string
}

// Statements splits the migration text with SplitStatements.
func (m Migration) Statements() []string {
	return SplitStatements(m.SQL)
}

// ReadMigration reads the migration file from fsys. A missing file yields an
// error wrapping ErrFileNotFound.
func ReadMigration(fsys afero.Fs, filename, lineEnding string) (Migration, error) {
	data, err := afero.ReadFile(fsys, filename)
	if errors.Is(err, fs.ErrNotExist) {
		return Migration{}, fmt.Errorf("%w: %s", ErrFileNotFound, filename)
	}
	if err != nil {
		return Migration{}, fmt.Errorf("failed to read migration %s: %w", filename, err)
	}
	content := string(data)
	md5sum, err := checksum(content, lineEnding)
	if err != nil {
		return Migration{}, err
	}
	return Migration{
		Filename: filename,
		SQL:      content,
		Size:     len(data),
		Md5:      md5sum,
	}, nil
}

// SplitStatements splits text on every ';', trims each piece and drops the
// empty ones. It does not understand SQL: a ';' inside a string literal, a
// comment or a $$ body ends the statement there.
func SplitStatements(text string) []string {
	var statements []string
	for _, part := range strings.Split(text, ";") {
		stmt := strings.TrimSpace(part)
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// convertLineEnding converts all newline variations in content to the target style.
func convertLineEnding(content, lineEnding string) (string, error) {
	var target string
	switch lineEnding {
	case "LF":
		target = "\n"
	case "CR":
		target = "\r"
	case "CRLF":
		target = "\r\n"
	default:
		return "", fmt.Errorf("newline must be one of: LF, CR, CRLF")
	}
	re := regexp.MustCompile(`\r\n|\r|\n`)
	return re.ReplaceAllString(content, target), nil
}

// checksum computes the MD5 checksum of the content after converting line endings if set.
func checksum(content, lineEnding string) (string, error) {
	if lineEnding != "" {
		var err error
		content, err = convertLineEnding(content, lineEnding)
		if err != nil {
			return "", err
		}
	}
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:]), nil
}

// firstLine returns the first line of a statement, used when listing.
func firstLine(stmt string) string {
	line, _, cut := strings.Cut(stmt, "\n")
	line = strings.TrimSpace(line)
	if cut {
		line += " ..."
	}
	return line
}
