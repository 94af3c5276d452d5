// Package compressor shrinks the sparse action and goto tables of a parser. Equal rows
// are stored once, and the remaining rows are overlaid on one array by row
// displacement.
package compressor

import (
	"fmt"
	"sort"

	"github.com/cnf/structhash"
)

type OriginalTable struct {
	entries  []int
	rowCount int
	colCount int
}

func NewOriginalTable(entries []int, colCount int) (*OriginalTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("entries is empty")
	}
	if colCount <= 0 {
		return nil, fmt.Errorf("colCount must be >=1")
	}
	if len(entries)%colCount != 0 {
		return nil, fmt.Errorf("entries length or column count are incorrect; entries length: %v, column count: %v", len(entries), colCount)
	}

	return &OriginalTable{
		entries:  entries,
		rowCount: len(entries) / colCount,
		colCount: colCount,
	}, nil
}

func (t *OriginalTable) row(r int) []int {
	return t.entries[r*t.colCount : (r+1)*t.colCount]
}

type Compressor interface {
	Compress(orig *OriginalTable) error
	Lookup(row, col int) (int, error)
	OriginalTableSize() (int, int)
}

var (
	_ Compressor = &UniqueEntriesTable{}
	_ Compressor = &RowDisplacementTable{}
)

// Compress stores a table with both methods: equal rows are merged first, and the
// unique rows are displaced into one array.
func Compress(entries []int, colCount int, emptyValue int) (*UniqueEntriesTable, error) {
	orig, err := NewOriginalTable(entries, colCount)
	if err != nil {
		return nil, err
	}
	tab := NewUniqueEntriesTable(emptyValue)
	if err := tab.Compress(orig); err != nil {
		return nil, err
	}
	return tab, nil
}

// UniqueEntriesTable maps every original row to one of the unique rows, which are kept
// in a RowDisplacementTable.
type UniqueEntriesTable struct {
	UniqueEntries    *RowDisplacementTable `json:"unique_entries"`
	RowNums          []int                 `json:"row_nums"`
	OriginalRowCount int                   `json:"original_row_count"`
	OriginalColCount int                   `json:"original_col_count"`
}

func NewUniqueEntriesTable(emptyValue int) *UniqueEntriesTable {
	return &UniqueEntriesTable{
		UniqueEntries: NewRowDisplacementTable(emptyValue),
	}
}

func (tab *UniqueEntriesTable) Lookup(row, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return 0, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	return tab.UniqueEntries.Lookup(tab.RowNums[row], col)
}

func (tab *UniqueEntriesTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

// rowKey is the hashed form of a row.
type rowKey struct {
	Entries []int
}

func (tab *UniqueEntriesTable) Compress(orig *OriginalTable) error {
	var uniqueEntries []int
	rowNums := make([]int, orig.rowCount)
	hash2RowNum := map[string]int{}
	for r := 0; r < orig.rowCount; r++ {
		h, err := structhash.Hash(rowKey{Entries: orig.row(r)}, 1)
		if err != nil {
			return err
		}
		rowNum, ok := hash2RowNum[h]
		if !ok {
			rowNum = len(hash2RowNum)
			hash2RowNum[h] = rowNum
			uniqueEntries = append(uniqueEntries, orig.row(r)...)
		}
		rowNums[r] = rowNum
	}

	unique, err := NewOriginalTable(uniqueEntries, orig.colCount)
	if err != nil {
		return err
	}
	if err := tab.UniqueEntries.Compress(unique); err != nil {
		return err
	}
	tab.RowNums = rowNums
	tab.OriginalRowCount = orig.rowCount
	tab.OriginalColCount = orig.colCount

	return nil
}

// ForbiddenValue marks a slot of Bounds that belongs to no row.
const ForbiddenValue = -1

// RowDisplacementTable places every row at an offset of one shared array so that the
// non-empty entries of different rows never overlap. Bounds records the row owning
// each slot.
type RowDisplacementTable struct {
	OriginalRowCount int   `json:"original_row_count"`
	OriginalColCount int   `json:"original_col_count"`
	EmptyValue       int   `json:"empty_value"`
	Entries          []int `json:"entries"`
	Bounds           []int `json:"bounds"`
	RowDisplacement  []int `json:"row_displacement"`
}

func NewRowDisplacementTable(emptyValue int) *RowDisplacementTable {
	return &RowDisplacementTable{
		EmptyValue: emptyValue,
	}
}

func (tab *RowDisplacementTable) Lookup(row int, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return tab.EmptyValue, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	d := tab.RowDisplacement[row]
	if tab.Bounds[d+col] != row {
		return tab.EmptyValue, nil
	}
	return tab.Entries[d+col], nil
}

func (tab *RowDisplacementTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

type rowInfo struct {
	rowNum      int
	nonEmptyCol []int
}

// Compress places the densest rows first, each at the lowest offset where it fits.
func (tab *RowDisplacementTable) Compress(orig *OriginalTable) error {
	rows := make([]rowInfo, orig.rowCount)
	for r := range rows {
		rows[r].rowNum = r
		for c, v := range orig.row(r) {
			if v != tab.EmptyValue {
				rows[r].nonEmptyCol = append(rows[r].nonEmptyCol, c)
			}
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return len(rows[i].nonEmptyCol) > len(rows[j].nonEmptyCol)
	})

	size := len(orig.entries)
	entries := make([]int, size)
	bounds := make([]int, size)
	for i := range entries {
		entries[i] = tab.EmptyValue
		bounds[i] = ForbiddenValue
	}
	rowDisplacement := make([]int, orig.rowCount)
	bottom := orig.colCount

	fits := func(d int, cols []int) bool {
		for _, c := range cols {
			if bounds[d+c] != ForbiddenValue {
				return false
			}
		}
		return true
	}

	d := 0
	for _, r := range rows {
		if len(r.nonEmptyCol) == 0 {
			continue
		}
		for !fits(d, r.nonEmptyCol) {
			d++
		}
		rowDisplacement[r.rowNum] = d
		for _, c := range r.nonEmptyCol {
			entries[d+c] = orig.entries[r.rowNum*orig.colCount+c]
			bounds[d+c] = r.rowNum
		}
		if d+orig.colCount > bottom {
			bottom = d + orig.colCount
		}
		d++
	}

	tab.OriginalRowCount = orig.rowCount
	tab.OriginalColCount = orig.colCount
	tab.Entries = entries[:bottom]
	tab.Bounds = bounds[:bottom]
	tab.RowDisplacement = rowDisplacement

	return nil
}
