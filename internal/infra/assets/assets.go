// Package assets provides the embeddable player document and the bridge script.
package assets

import (
	"embed"
	"io/fs"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// Placeholder is replaced with the serialized player options.
const Placeholder = "INSERT_OPTIONS_HERE"

const (
	templateName = "static/player.html"
	bridgeName   = "static/bridge.js"
)

// Errors
var (
	ErrTemplateNotFound   = errors.New("player template not found")
	ErrPlaceholderMissing = errors.New("player template has no options placeholder")
)

//go:embed static
var static embed.FS

// Template loads the player document template.
type Template struct {
	name string
	read func() ([]byte, error)
}

// Embedded returns the template compiled into the binary.
func Embedded() *Template {
	return FromFS(static, templateName)
}

// FromFile returns a template read from path on every load, so edits are
// picked up without a restart.
func FromFile(path string) *Template {
	return &Template{
		name: path,
		read: func() ([]byte, error) { return os.ReadFile(path) },
	}
}

// FromFS returns a template read from name in fsys.
func FromFS(fsys fs.FS, name string) *Template {
	return &Template{
		name: name,
		read: func() ([]byte, error) { return fs.ReadFile(fsys, name) },
	}
}

// Load returns the template text. A missing resource or placeholder is a
// packaging problem and is reported as such.
func (t *Template) Load() (string, error) {
	data, err := t.read()
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(ErrTemplateNotFound, "%s", t.name)
		}
		return "", errors.Wrapf(err, "failed to read player template %s", t.name)
	}

	html := string(data)
	if !strings.Contains(html, Placeholder) {
		return "", errors.Wrapf(ErrPlaceholderMissing, "%s", t.name)
	}
	return html, nil
}

// BridgeScript returns the page-side script of the browser bridge.
func BridgeScript() []byte {
	data, err := static.ReadFile(bridgeName)
	if err != nil {
		// The file is embedded at build time.
		panic(err)
	}
	return data
}
