/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package plugins

import (
	lcdc "github.com/TNO-MPC/communication/codec"
)

// DataFrame is the {columns, index, data} split-record fallback used when
// no table-native codec is installed for a dataframe/series value
// (spec.md §4.1). This module carries no table library of its own — any
// component that produces tabular data populates this struct directly and
// lets the registry round-trip it.
type DataFrame struct {
	Columns []string
	Index   []any
	Data    [][]any
}

func init() {
	lcdc.RegisterBuiltin("DataFrame",
		func(v any, opts lcdc.Options) (any, error) {
			df, ok := v.(DataFrame)
			if !ok {
				return nil, ErrorBadPayload.Error(nil)
			}

			cols := make([]any, len(df.Columns))
			for i, c := range df.Columns {
				cols[i] = c
			}

			rows := make([]any, len(df.Data))
			for i, r := range df.Data {
				rows[i] = r
			}

			return map[string]any{"columns": cols, "index": df.Index, "data": rows}, nil
		},
		func(data any, opts lcdc.Options) (any, error) {
			m, ok := data.(map[string]any)
			if !ok {
				return nil, ErrorBadPayload.Error(nil)
			}

			rawCols, _ := m["columns"].([]any)
			cols := make([]string, len(rawCols))
			for i, c := range rawCols {
				s, ok := c.(string)
				if !ok {
					return nil, ErrorBadPayload.Error(nil)
				}
				cols[i] = s
			}

			index, _ := m["index"].([]any)

			rawRows, _ := m["data"].([]any)
			rows := make([][]any, len(rawRows))
			for i, r := range rawRows {
				row, ok := r.([]any)
				if !ok {
					return nil, ErrorBadPayload.Error(nil)
				}
				rows[i] = row
			}

			return DataFrame{Columns: cols, Index: index, Data: rows}, nil
		},
	)
}
