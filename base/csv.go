// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package base

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateId validates user/business id. Id cannot be empty or contain spaces,
// since ids are written into whitespace separated files.
func ValidateId(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("id cannot be empty")
	} else if strings.IndexFunc(text, unicode.IsSpace) >= 0 {
		return fmt.Errorf("id cannot contain spaces")
	}
	return nil
}

// Escape text for csv.
func Escape(text string) string {
	// check if need escape
	if !strings.Contains(text, ",") &&
		!strings.Contains(text, "\"") &&
		!strings.Contains(text, "\n") &&
		!strings.Contains(text, "\r") {
		return text
	}
	// start to encode
	builder := strings.Builder{}
	builder.WriteRune('"')
	for _, c := range text {
		if c == '"' {
			builder.WriteString("\"\"")
		} else {
			builder.WriteRune(c)
		}
	}
	builder.WriteRune('"')
	return builder.String()
}
