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

package util

import (
	"strconv"

	"golang.org/x/exp/constraints"
)

func ParseFloat[T constraints.Float](s string) (T, error) {
	var bitSize int
	switch any(T(0)).(type) {
	case float32:
		bitSize = 32
	default:
		bitSize = 64
	}
	v, err := strconv.ParseFloat(s, bitSize)
	return T(v), err
}

func ParseInt[T constraints.Signed](s string) (T, error) {
	var bitSize int
	switch any(T(0)).(type) {
	case int8:
		bitSize = 8
	case int16:
		bitSize = 16
	case int32:
		bitSize = 32
	default:
		bitSize = 64
	}
	v, err := strconv.ParseInt(s, 10, bitSize)
	return T(v), err
}
