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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateId(t *testing.T) {
	assert.NotNil(t, ValidateId(""))
	assert.NotNil(t, ValidateId("  "))
	assert.NotNil(t, ValidateId("a b"))
	assert.NotNil(t, ValidateId("a\tb"))
	assert.Nil(t, ValidateId("rLtl8ZkDX5vH5nAx9C3q5Q"))
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "123", Escape("123"))
	assert.Equal(t, "\"\"\"123\"\"\"", Escape("\"123\""))
	assert.Equal(t, "\"1,2,3\"", Escape("1,2,3"))
	assert.Equal(t, "\"\"\",\"\"\"", Escape("\",\""))
	assert.Equal(t, "\"1\r\n2\r\n3\"", Escape("1\r\n2\r\n3"))
}
