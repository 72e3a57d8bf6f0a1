package utils

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"golang.org/x/net/html"
)

var classicScriptTypes = map[string]bool{
	"":                       true,
	"text/javascript":        true,
	"application/javascript": true,
}

// ValidateScripts compiles every inline classic <script> of a document and
// returns one warning per script that fails to parse. Scripts loaded through
// src, modules and data blocks are skipped.
func ValidateScripts(doc string) []string {
	var warnings []string
	z := html.NewTokenizer(strings.NewReader(doc))
	inScript, skip, index := false, false, 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return warnings
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "script" {
				continue
			}
			inScript, skip = true, false
			index++
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				switch string(key) {
				case "src":
					skip = true
				case "type":
					if !classicScriptTypes[strings.ToLower(strings.TrimSpace(string(val)))] {
						skip = true
					}
				}
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "script" {
				inScript = false
			}
		case html.TextToken:
			if !inScript || skip {
				continue
			}
			src := string(z.Text())
			if strings.TrimSpace(src) == "" {
				continue
			}
			if _, err := goja.Compile(fmt.Sprintf("inline-script-%d.js", index), src, false); err != nil {
				warnings = append(warnings, fmt.Sprintf("inline script %d: %v", index, err))
			}
		}
	}
}
