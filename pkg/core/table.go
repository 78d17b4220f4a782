package core

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// Table 统一的表格数据载体
// 数据源返回的所有数据集都以 Table 形式在路由层流转，
// 列有序且在创建后不可增删，行按追加顺序存储
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// NewTable 创建指定列的空表格
func NewTable(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)

	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}

	return &Table{
		columns: cols,
		index:   index,
	}
}

// Columns 返回列名列表（副本）
func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// Len 返回行数
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Empty 判断表格是否为空（nil 表格视为空）
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// HasColumn 判断列是否存在
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[name]
	return ok
}

// AppendRow 按列顺序追加一行，值的数量必须与列数一致
func (t *Table) AppendRow(values ...any) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}

	row := make([]any, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

// AppendRecord 按列名追加一行，缺失的列填 nil，多余的键忽略
func (t *Table) AppendRecord(record map[string]any) {
	row := make([]any, len(t.columns))
	for name, i := range t.index {
		if v, ok := record[name]; ok {
			row[i] = v
		}
	}
	t.rows = append(t.rows, row)
}

// Value 读取指定行列的原始值
func (t *Table) Value(row int, column string) (any, bool) {
	if t == nil || row < 0 || row >= len(t.rows) {
		return nil, false
	}
	i, ok := t.index[column]
	if !ok {
		return nil, false
	}
	return t.rows[row][i], true
}

// Float 读取指定行列的浮点值，读取失败返回 0
func (t *Table) Float(row int, column string) float64 {
	v, ok := t.Value(row, column)
	if !ok {
		return 0
	}
	return cast.ToFloat64(v)
}

// Int 读取指定行列的整数值，读取失败返回 0
func (t *Table) Int(row int, column string) int64 {
	v, ok := t.Value(row, column)
	if !ok {
		return 0
	}
	return cast.ToInt64(v)
}

// String 读取指定行列的字符串值
func (t *Table) String(row int, column string) string {
	v, ok := t.Value(row, column)
	if !ok {
		return ""
	}
	return cast.ToString(v)
}

// Time 读取指定行列的时间值，读取失败返回零值
func (t *Table) Time(row int, column string) time.Time {
	v, ok := t.Value(row, column)
	if !ok {
		return time.Time{}
	}
	return cast.ToTime(v)
}

// Records 以 map 形式导出所有行
func (t *Table) Records() []map[string]any {
	if t == nil {
		return nil
	}

	records := make([]map[string]any, 0, len(t.rows))
	for _, row := range t.rows {
		record := make(map[string]any, len(t.columns))
		for i, name := range t.columns {
			record[name] = row[i]
		}
		records = append(records, record)
	}
	return records
}

// RenameColumns 按映射表重命名列，映射表中不存在的列保持原名
// 用于把上游返回的中文表头统一成英文蛇形命名
func (t *Table) RenameColumns(mapping map[string]string) {
	index := make(map[string]int, len(t.columns))
	for i, name := range t.columns {
		if renamed, ok := mapping[name]; ok {
			t.columns[i] = renamed
		}
		index[t.columns[i]] = i
	}
	t.index = index
}
