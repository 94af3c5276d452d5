package compressor

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestCompressor_Compress(t *testing.T) {
	x := 0 // an empty value

	allCompressors := func() []Compressor {
		return []Compressor{
			NewUniqueEntriesTable(x),
			NewRowDisplacementTable(x),
		}
	}

	tests := []struct {
		caption  string
		original []int
		rowCount int
		colCount int
	}{
		{
			caption: "every entry is non-empty",
			original: []int{
				1, 1, 1, 1, 1,
				1, 1, 1, 1, 1,
				1, 1, 1, 1, 1,
			},
			rowCount: 3,
			colCount: 5,
		},
		{
			caption: "every entry is empty",
			original: []int{
				x, x, x, x, x,
				x, x, x, x, x,
				x, x, x, x, x,
			},
			rowCount: 3,
			colCount: 5,
		},
		{
			caption: "an empty row between equal rows",
			original: []int{
				1, 1, 1, 1, 1,
				x, x, x, x, x,
				1, 1, 1, 1, 1,
			},
			rowCount: 3,
			colCount: 5,
		},
		{
			caption: "rows with a hole each",
			original: []int{
				1, x, 1, 1, 1,
				1, 1, x, 1, 1,
				1, 1, 1, x, 1,
			},
			rowCount: 3,
			colCount: 5,
		},
		{
			caption: "an action table with shifts and reduces",
			original: []int{
				-2, x, x, -3, x,
				x, 1, x, x, x,
				x, 4, 4, x, 4,
				-2, x, x, -3, x,
				x, x, -5, x, 4,
			},
			rowCount: 5,
			colCount: 5,
		},
		{
			caption: "a single column",
			original: []int{
				x,
				7,
				x,
				-7,
			},
			rowCount: 4,
			colCount: 1,
		},
	}
	for _, tt := range tests {
		for _, comp := range allCompressors() {
			t.Run(fmt.Sprintf("%v (%T)", tt.caption, comp), func(t *testing.T) {
				dup := make([]int, len(tt.original))
				copy(dup, tt.original)

				orig, err := NewOriginalTable(tt.original, tt.colCount)
				if err != nil {
					t.Fatal(err)
				}
				err = comp.Compress(orig)
				if err != nil {
					t.Fatal(err)
				}
				rowCount, colCount := comp.OriginalTableSize()
				if rowCount != tt.rowCount || colCount != tt.colCount {
					t.Fatalf("unexpected table size; want: %vx%v, got: %vx%v", tt.rowCount, tt.colCount, rowCount, colCount)
				}
				testLookup(t, comp, tt.original, tt.rowCount, tt.colCount)

				// Calling with out-of-range indexes should be an error.
				if _, err := comp.Lookup(0, -1); err == nil {
					t.Fatalf("expected error didn't occur (0, -1)")
				}
				if _, err := comp.Lookup(-1, 0); err == nil {
					t.Fatalf("expected error didn't occur (-1, 0)")
				}
				if _, err := comp.Lookup(rowCount-1, colCount); err == nil {
					t.Fatalf("expected error didn't occur (%v, %v)", rowCount-1, colCount)
				}
				if _, err := comp.Lookup(rowCount, colCount-1); err == nil {
					t.Fatalf("expected error didn't occur (%v, %v)", rowCount, colCount-1)
				}

				// The compressor must not break the original table.
				for i := 0; i < tt.rowCount; i++ {
					for j := 0; j < tt.colCount; j++ {
						idx := i*tt.colCount + j
						if tt.original[idx] != dup[idx] {
							t.Fatalf("the original table is broken (%v, %v); want: %v, got: %v", i, j, dup[idx], tt.original[idx])
						}
					}
				}
			})
		}
	}
}

func TestCompress(t *testing.T) {
	original := []int{
		-1, 0, 0, 2,
		0, 3, 0, 0,
		-1, 0, 0, 2,
		-1, 0, 0, 2,
	}
	tab, err := Compress(original, 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(tab.UniqueEntries.RowDisplacement) != 2 {
		t.Fatalf("equal rows must be stored once; unique rows: %v", len(tab.UniqueEntries.RowDisplacement))
	}

	// The compressed table survives a JSON round trip, which is how compiled grammars
	// store it.
	b, err := json.Marshal(tab)
	if err != nil {
		t.Fatal(err)
	}
	var decoded UniqueEntriesTable
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	testLookup(t, &decoded, original, 4, 4)

	if _, err := Compress(nil, 4, 0); err == nil {
		t.Fatal("expected error didn't occur for an empty table")
	}
	if _, err := Compress(original, 3, 0); err == nil {
		t.Fatal("expected error didn't occur for a ragged table")
	}
}

func testLookup(t *testing.T, comp Compressor, original []int, rowCount, colCount int) {
	t.Helper()
	for i := 0; i < rowCount; i++ {
		for j := 0; j < colCount; j++ {
			v, err := comp.Lookup(i, j)
			if err != nil {
				t.Fatal(err)
			}
			expected := original[i*colCount+j]
			if v != expected {
				t.Fatalf("unexpected entry (%v, %v); want: %v, got: %v", i, j, expected, v)
			}
		}
	}
}
