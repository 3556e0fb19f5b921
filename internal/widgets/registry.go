package widgets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"homefix/internal/protocol"
)

const MIMEType = "text/html+skybridge"

var (
	ErrUnknownResource = errors.New("unknown resource")
	ErrBundleMissing   = errors.New("widget bundle missing")
)

// Definition is one UI resource backed by a compiled JS bundle.
type Definition struct {
	Key    string
	URI    string
	Name   string
	Bundle string
	RootID string
}

var definitions = []Definition{
	{
		Key:    "diagnosis",
		URI:    protocol.ResourceDiagnosisWidget,
		Name:   "Diagnosis widget",
		Bundle: "diagnosis-widget.js",
		RootID: "diagnosis-root",
	},
	{
		Key:    "steps",
		URI:    protocol.ResourceStepsWidget,
		Name:   "Repair steps widget",
		Bundle: "steps-widget.js",
		RootID: "steps-root",
	},
}

type Content struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType"`
	Text     string `json:"text"`
}

// Registry serves widget HTML shells from bundles under distDir. Bundles are
// read on every call so a rebuilt client is picked up without a restart.
type Registry struct {
	distDir string
}

func NewRegistry(distDir string) *Registry {
	return &Registry{distDir: distDir}
}

func (r *Registry) Definitions() []Definition {
	return append([]Definition(nil), definitions...)
}

func (r *Registry) Read(uri string) (Content, error) {
	def, ok := lookup(uri)
	if !ok {
		return Content{}, fmt.Errorf("%w: %s", ErrUnknownResource, uri)
	}

	script, err := os.ReadFile(filepath.Join(r.distDir, def.Bundle))
	if err != nil {
		return Content{}, fmt.Errorf("%w: %s (build the client bundles into %s)", ErrBundleMissing, def.Bundle, r.distDir)
	}
	styles, _ := os.ReadFile(filepath.Join(r.distDir, "styles.css"))

	return Content{
		URI:      def.URI,
		MIMEType: MIMEType,
		Text:     renderShell(def.RootID, string(script), string(styles)),
	}, nil
}

func lookup(uri string) (Definition, bool) {
	for _, def := range definitions {
		if def.URI == uri {
			return def, true
		}
	}
	return Definition{}, false
}

func renderShell(rootID, script, styles string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n  <head>\n")
	b.WriteString("    <meta charset=\"utf-8\" />\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\" />\n")
	if strings.TrimSpace(styles) != "" {
		b.WriteString("    <style>")
		b.WriteString(styles)
		b.WriteString("</style>\n")
	}
	b.WriteString("  </head>\n  <body>\n")
	fmt.Fprintf(&b, "    <div id=%q></div>\n", rootID)
	b.WriteString("    <script type=\"module\">")
	b.WriteString(script)
	b.WriteString("</script>\n  </body>\n</html>\n")
	return b.String()
}
