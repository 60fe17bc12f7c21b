package namedconf

import (
	"errors"
	"io/fs"
	"os"

	"github.com/haukened/bindmgr/internal/dns/common/utils"
	"github.com/haukened/bindmgr/internal/dns/domain"
)

// File is a named.conf fragment on disk.
type File struct {
	Path string
	// AllowMissing makes Load return an empty document for a missing file.
	AllowMissing bool
}

// Load reads and parses the file.
func (f File) Load() (*Document, error) {
	const op = "load config"
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		if f.AllowMissing {
			return Parse("")
		}
		return nil, domain.NotFound(op, "config file %s does not exist", f.Path)
	}
	if err != nil {
		return nil, domain.Wrap(domain.KindIOFailure, op, err)
	}
	doc, err := Parse(string(data))
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindMalformedInput, Op: op, Msg: f.Path, Err: err}
	}
	return doc, nil
}

// Save replaces the file with the document text.
func (f File) Save(doc *Document) error {
	if err := utils.WriteAtomic(f.Path, []byte(doc.String())); err != nil {
		return domain.Wrap(domain.KindIOFailure, "save config", err)
	}
	return nil
}
